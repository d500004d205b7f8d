/*
Package api exposes the gridcore scheduler process over HTTP and gRPC: an
HTTP health/readiness/metrics surface for operators and load balancers, and
a standard grpc_health_v1 health service for orchestrators that prefer
gRPC-native health checking.

# Architecture

	┌────────────────────── CLIENT / ORCHESTRATOR ─────────────────────┐
	│                                                                    │
	│   HTTP GET /health, /ready, /metrics      gRPC Health/Watch       │
	└──────────────────┬─────────────────────────────┬─────────────────┘
	                   │                             │
	┌──────────────────▼─────────────────┐ ┌─────────▼──────────────────┐
	│      HealthServer (pkg/api)         │ │   grpc_health_v1.Server     │
	│  - /health  liveness                │ │   (pkg/api)                 │
	│  - /ready   dispatcher-backed       │ │  - Check / Watch             │
	│  - /metrics Prometheus registry     │ │  - serving state per service │
	└──────────────────┬──────────────────┘ └─────────┬───────────────────┘
	                   │                             │
	                   └──────────────┬──────────────┘
	                                  ▼
	                       scheduler.Dispatcher
	                  (satisfies DispatcherStatus)

Neither server executes scheduler operations; they only read the
Dispatcher's read-only query surface (RunningOperationCount,
PartitionQueueDepths, WorkersAlive, ...) to answer health questions.

# Core Components

HealthServer: HTTP liveness/readiness/metrics.

	hs := api.NewHealthServer(dispatcher)
	go hs.Start(cfg.HTTPAddr)

GRPCHealthServer: standard gRPC health checking protocol, so orchestrators
that watch a service's serving status over gRPC instead of HTTP have a
native target.

	grpcSrv := grpc.NewServer()
	healthSrv := api.NewGRPCHealthServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus("gridcore", grpc_health_v1.HealthCheckResponse_SERVING)

# Usage Examples

## Wiring both servers alongside a running dispatcher

	dispatcher := scheduler.New(cfg, opHandler, respHandler, executors, broker)
	dispatcher.Start(ctx)

	hs := api.NewHealthServer(dispatcher)
	go hs.Start(cfg.HTTPAddr)

	lis, _ := net.Listen("tcp", cfg.GRPCAddr)
	grpcSrv := grpc.NewServer()
	ghs := api.NewGRPCHealthServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, ghs)
	ghs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go grpcSrv.Serve(lis)

# Integration Points

  - pkg/scheduler - Dispatcher satisfies DispatcherStatus, the only
    contract this package depends on from the scheduler
  - pkg/metrics - metrics.Handler() backs the /metrics endpoint;
    metrics.RegisterComponent feeds pkg/metrics's own health registry
  - cmd/gridcore - constructs and starts both servers during process
    startup and stops the gRPC server during graceful shutdown; the HTTP
    server runs until the process exits

# See Also

  - pkg/scheduler for the Dispatcher this package reports on
  - pkg/metrics for the Prometheus registry and component health registry
  - google.golang.org/grpc/health/grpc_health_v1 for the wire protocol
*/
package api
