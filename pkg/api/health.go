package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/gridcore/pkg/metrics"
)

// DispatcherStatus is the minimal view of the dispatcher the health server
// needs - satisfied by *scheduler.Dispatcher without this package importing
// pkg/scheduler directly.
type DispatcherStatus interface {
	RunningOperationCount() int
	PartitionQueueDepths() map[int][2]int
	GenericQueueDepth() [2]int
	ResponseQueueDepth() int
	WorkersAlive() (partition, generic int)
}

// HealthServer provides HTTP health check endpoints
type HealthServer struct {
	dispatcher DispatcherStatus
	mux        *http.ServeMux
}

// NewHealthServer creates a new health check HTTP server. dispatcher may be
// nil before the scheduler has started, in which case readiness reports
// not ready.
func NewHealthServer(dispatcher DispatcherStatus) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		dispatcher: dispatcher,
		mux:        mux,
	}

	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readyHandler)
	mux.Handle("/metrics", metrics.Handler())

	return hs
}

// Start starts the health check HTTP server
func (hs *HealthServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// healthHandler implements the /health endpoint - a liveness check that
// returns 200 as long as the process is up, regardless of dispatcher state.
func (hs *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "0.1.0", // TODO: get from build info
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// readyHandler implements the /ready endpoint: the process is ready once
// its dispatcher is wired and reporting worker counts.
func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	ready := true
	var message string

	if hs.dispatcher != nil {
		partitionAlive, genericAlive := hs.dispatcher.WorkersAlive()
		checks["dispatcher"] = fmt.Sprintf("partition_workers=%d generic_workers=%d running_operations=%d",
			partitionAlive, genericAlive, hs.dispatcher.RunningOperationCount())
	} else {
		checks["dispatcher"] = "not initialized"
		ready = false
		message = "Dispatcher not initialized"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// GetHandler returns the HTTP handler for embedding in other servers
func (hs *HealthServer) GetHandler() http.Handler {
	return hs.mux
}
