/*
Package metrics provides Prometheus metrics collection and exposition for the
gridcore scheduler.

The metrics package defines and registers all gridcore metrics using the
Prometheus client library, providing observability into queue depths, worker
liveness, dispatch latency, and task fault rates. Metrics are exposed via an
HTTP endpoint for scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Categories               │          │
	│  │                                              │          │
	│  │  Queue depth: per partition/generic/response│          │
	│  │  Worker liveness: alive count by kind       │          │
	│  │  Throughput: tasks processed, urgent wakeups│          │
	│  │  Faults: by error kind, worker respawns     │          │
	│  │  Latency: dispatch, operation processing    │          │
	│  │  Executor: pool saturation, rejections      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Collector                         │          │
	│  │  Polls a StatsSource on a 5s ticker          │          │
	│  │  and updates the gauges above                │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Variables:
  - QueueDepth: gauge vec, labeled worker_kind/worker_id/queue
  - RunningOperations: gauge vec, 1 if a worker has an in-flight task
  - WorkersAlive: gauge vec by worker_kind
  - TasksProcessedTotal: counter vec by worker_kind/task_kind
  - UrgentWakeupsTotal: counter, wakeup sentinels enqueued
  - TaskFaultsTotal: counter vec by error_kind
  - WorkersRespawnedTotal: counter vec by partition_id ("generic" for generic slots)
  - DispatchLatency / OperationDuration: histograms
  - ExecutorPoolSaturation / ExecutorRejectionsTotal: named executor health

Timer:
  - NewTimer() starts a stopwatch
  - ObserveDuration/ObserveDurationVec record elapsed time to a histogram
  - Duration() returns elapsed time without recording

Collector:
  - NewCollector(source) wraps anything satisfying StatsSource
  - Start() polls every 5 seconds, Stop() halts the ticker

HealthChecker:
  - RegisterComponent/UpdateComponent track named component health
  - GetHealth/GetReadiness aggregate status for HTTP handlers
  - Critical components for readiness: "dispatcher", "api"

# Usage

Registering and serving metrics:

	import "github.com/cuemby/gridcore/pkg/metrics"

	http.Handle("/metrics", metrics.Handler())

Timing dispatch:

	timer := metrics.NewTimer()
	dispatcher.route(task)
	timer.ObserveDuration(metrics.DispatchLatency)

Polling dispatcher stats:

	collector := metrics.NewCollector(dispatcher)
	collector.Start()
	defer collector.Stop()

# Integration Points

  - pkg/scheduler: reports queue depths, worker liveness, and faults
  - pkg/executor: reports pool saturation (nothing increments ExecutorRejectionsTotal)
  - pkg/api: serves /metrics, /health, /ready

# See Also

  - pkg/scheduler for the dispatcher these metrics describe
  - pkg/api for the HTTP endpoints that expose them
*/
package metrics
