package api

import (
	"context"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthServer wraps the standard grpc_health_v1 health service so
// orchestrators that watch serving status over gRPC (rather than polling
// the HTTP /ready endpoint) have a native target. It delegates to grpc's
// own health.Server rather than reimplementing the Check/Watch streaming
// protocol.
type GRPCHealthServer struct {
	*health.Server
}

// NewGRPCHealthServer creates a health service whose overall status (the
// empty service name) starts as SERVING; any other service name is unknown
// to it until SetServingStatus sets a status for that name.
func NewGRPCHealthServer() *GRPCHealthServer {
	return &GRPCHealthServer{Server: health.NewServer()}
}

// MarkDispatcherServing flips the health service to SERVING for the given
// service name, called once the dispatcher's workers are all running.
func (g *GRPCHealthServer) MarkDispatcherServing(ctx context.Context, service string) {
	g.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
}

// MarkDispatcherNotServing flips the health service to NOT_SERVING, called
// during graceful shutdown before the dispatcher drains.
func (g *GRPCHealthServer) MarkDispatcherNotServing(ctx context.Context, service string) {
	g.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
}
