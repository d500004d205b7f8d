package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Queue depth gauges, one series per worker kind.
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridcore_queue_depth",
			Help: "Current depth of a worker's blocking or priority queue",
		},
		[]string{"worker_kind", "worker_id", "queue"},
	)

	RunningOperations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridcore_running_operations",
			Help: "Whether a worker currently has an in-flight task (1) or is idle (0)",
		},
		[]string{"worker_kind", "worker_id"},
	)

	WorkersAlive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridcore_workers_alive",
			Help: "Number of live worker goroutines by kind",
		},
		[]string{"worker_kind"},
	)

	// Processed task counters.
	TasksProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridcore_tasks_processed_total",
			Help: "Total number of tasks processed by worker kind and task kind",
		},
		[]string{"worker_kind", "task_kind"},
	)

	UrgentWakeupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridcore_urgent_wakeups_total",
			Help: "Total number of wakeup sentinels enqueued to interrupt a blocking take()",
		},
	)

	TaskFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridcore_task_faults_total",
			Help: "Total number of task faults by error kind",
		},
		[]string{"error_kind"},
	)

	WorkersRespawnedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridcore_workers_respawned_total",
			Help: "Total number of workers respawned after a fatal panic, by partition worker id or \"generic\"",
		},
		[]string{"partition_id"},
	)

	// Latency histograms.
	DispatchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridcore_dispatch_latency_seconds",
			Help:    "Time taken to route a submitted task onto a worker queue",
			Buckets: prometheus.DefBuckets,
		},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridcore_operation_duration_seconds",
			Help:    "Time taken to execute a task once a worker pulls it off its queue",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"worker_kind", "task_kind"},
	)

	ExecutorPoolSaturation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridcore_executor_pool_saturation",
			Help: "Fraction of a named executor pool's concurrency slots in use",
		},
		[]string{"executor_name"},
	)

	ExecutorRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridcore_executor_rejections_total",
			Help: "Total number of submissions rejected by a named executor pool",
		},
		[]string{"executor_name"},
	)
)

func init() {
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(RunningOperations)
	prometheus.MustRegister(WorkersAlive)
	prometheus.MustRegister(TasksProcessedTotal)
	prometheus.MustRegister(UrgentWakeupsTotal)
	prometheus.MustRegister(TaskFaultsTotal)
	prometheus.MustRegister(WorkersRespawnedTotal)
	prometheus.MustRegister(DispatchLatency)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(ExecutorPoolSaturation)
	prometheus.MustRegister(ExecutorRejectionsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
