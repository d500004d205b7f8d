package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/gridcore/pkg/config"
	"github.com/cuemby/gridcore/pkg/events"
	"github.com/cuemby/gridcore/pkg/executor"
	"github.com/cuemby/gridcore/pkg/log"
	"github.com/cuemby/gridcore/pkg/metrics"
)

// Dispatcher is the single entry point for all scheduled work: it owns
// every partition worker, the generic worker pool, and the response worker,
// and it is the only thing callers submit work to. It never executes a task
// itself - routing only ever enqueues onto one of those workers' queues.
type Dispatcher struct {
	cfg config.Config

	partitions []*partitionWorker
	generic    *genericWorkerPool
	response   *responseWorker
	opHandler  OperationHandler

	executors *executor.Registry
	events    *events.Broker

	shutdown atomic.Bool
	wg       sync.WaitGroup
}

// New builds a Dispatcher with P partition workers and G generic workers per
// cfg, wired to opHandler and respHandler. It does not start any goroutines;
// call Start to do that.
func New(cfg config.Config, opHandler OperationHandler, respHandler ResponseHandler, executors *executor.Registry, broker *events.Broker) *Dispatcher {
	d := &Dispatcher{
		cfg:       cfg,
		opHandler: opHandler,
		executors: executors,
		events:    broker,
	}

	d.partitions = make([]*partitionWorker, cfg.PartitionWorkers)
	for i := range d.partitions {
		d.partitions[i] = newPartitionWorker(i, opHandler, cfg.WorkerRestartPolicy, d.onPartitionFatal)
	}
	d.generic = newGenericWorkerPool(cfg.GenericWorkers, opHandler)
	d.response = newResponseWorker(respHandler)

	return d
}

// partitionCount returns P, the number of partition workers. Used by
// rolepolicy.go's predicates and by route()'s modulo routing.
func (d *Dispatcher) partitionCount() int {
	return len(d.partitions)
}

// Start launches every worker goroutine and returns without waiting for
// them. Workers run until Shutdown closes their queues; ctx is carried into
// the handler calls they make.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, pw := range d.partitions {
		d.wg.Add(1)
		pw := pw
		go func() {
			defer d.wg.Done()
			pw.run(ctx, func(delta int) { adjustAliveGauge("partition", delta) })
		}()
	}

	for slot := 0; slot < d.generic.size; slot++ {
		d.wg.Add(1)
		slot := slot
		go func() {
			defer d.wg.Done()
			d.generic.runOne(ctx, slot, func(delta int) { adjustAliveGauge("generic", delta) })
		}()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.response.run(ctx)
	}()

	if d.events != nil {
		d.events.Publish(&events.Event{Type: events.EventSchedulerStarted})
	}
}

func adjustAliveGauge(kind string, delta int) {
	if delta > 0 {
		metrics.WorkersAlive.WithLabelValues(kind).Add(float64(delta))
	} else {
		metrics.WorkersAlive.WithLabelValues(kind).Sub(float64(-delta))
	}
}

func (d *Dispatcher) onPartitionFatal(threadID int, fault error) {
	logger := log.WithPartition(threadID)
	logger.Error().Err(fault).Msg("partition worker stopped after fatal fault; not respawned")
	if d.events != nil {
		d.events.Publish(&events.Event{Type: events.EventWorkerEscalated})
	}
}

// Submit enqueues op following route()'s algorithm below: urgent operations
// go to the priority queue and wake their worker via the singleton sentinel;
// everything else goes to the FIFO. Partition-aware operations route to
// partition_id % P; partition-unaware operations route to the generic pool.
func (d *Dispatcher) Submit(op *Operation) error {
	if op == nil {
		return fmt.Errorf("%w: nil operation", ErrInvalidArgument)
	}
	if d.shutdown.Load() {
		return ErrShutdown
	}

	if op.ExecutorName != "" {
		if op.PartitionAware || op.IsUrgent {
			return fmt.Errorf("%w: executor-routed operations must be neither partition-aware nor urgent", ErrInvalidRouting)
		}
		if d.executors == nil {
			return fmt.Errorf("%w: no executor registry configured", ErrInvalidRouting)
		}
		return d.executors.Submit(context.Background(), op.ExecutorName, func(ctx context.Context) {
			ctx = WithRole(ctx, ThreadRole{Kind: RoleGenericWorker, PartitionID: -1})
			if err := d.opHandler.Process(ctx, op); err != nil {
				log.WithThread("executor-" + op.ExecutorName).Error().Err(err).
					Str("caller_address", op.CallerAddress).
					Uint64("call_id", op.CallID).
					Msg("executor operation fault")
				metrics.TaskFaultsTotal.WithLabelValues("operation_fault").Inc()
			}
		})
	}

	partitionID := -1
	if op.PartitionAware {
		partitionID = op.PartitionID
	}
	return d.route(operationTask(op), partitionID, op.IsUrgent)
}

// SubmitRunnable enqueues an arbitrary callback, routed the same way an
// operation would be: partitionID < 0 means "any generic worker".
func (d *Dispatcher) SubmitRunnable(fn func(), partitionID int, urgent bool) error {
	if fn == nil {
		return fmt.Errorf("%w: nil runnable", ErrInvalidArgument)
	}
	if d.shutdown.Load() {
		return ErrShutdown
	}
	return d.route(runnableTask(fn), partitionID, urgent)
}

// SubmitPacket enqueues a wire packet. Response packets are routed to the
// single response worker regardless of partition; everything else follows
// the normal partition/generic routing using the packet's own header.
func (d *Dispatcher) SubmitPacket(pkt *Packet) error {
	if pkt == nil {
		return fmt.Errorf("%w: nil packet", ErrInvalidArgument)
	}
	if d.shutdown.Load() {
		return ErrShutdown
	}
	if pkt.Header.Response {
		d.response.work.Put(packetTask(pkt))
		return nil
	}
	partitionID := pkt.PartitionID
	return d.route(packetTask(pkt), partitionID, pkt.Header.Urgent)
}

// route implements the four-step routing algorithm: pick the
// target worker by partitionID % P (or the generic pool when partitionID is
// negative), put the task on the priority queue when urgent and also enqueue
// the wakeup sentinel on the FIFO so a worker blocked in Take() notices,
// otherwise put the task directly on the FIFO.
func (d *Dispatcher) route(task *Task, partitionID int, urgent bool) error {
	if task == nil || task.IsNil() {
		return fmt.Errorf("%w: empty task", ErrInvalidArgument)
	}

	work, priority := d.targetQueues(partitionID)

	if urgent {
		priority.Put(task)
		work.Put(wakeupSentinel)
		metrics.UrgentWakeupsTotal.Inc()
		return nil
	}

	work.Put(task)
	return nil
}

func (d *Dispatcher) targetQueues(partitionID int) (*blockingQueue, *priorityQueue) {
	if partitionID < 0 {
		return d.generic.work, d.generic.priority
	}
	idx := partitionID % d.partitionCount()
	pw := d.partitions[idx]
	return pw.work, pw.priority
}

// RunningOperationCount returns the number of partition and generic workers
// currently executing an operation (current_operation != nil).
func (d *Dispatcher) RunningOperationCount() int {
	count := 0
	for _, pw := range d.partitions {
		if pw.CurrentOperation() != nil {
			count++
		}
	}
	for _, gw := range d.generic.Workers() {
		if gw.CurrentOperation() != nil {
			count++
		}
	}
	return count
}

// IsOperationExecuting reports whether any worker's current_operation
// matches the given identity, scanning both the partition workers and the
// generic pool.
func (d *Dispatcher) IsOperationExecuting(callerAddress string, partitionID int, callID uint64) bool {
	for _, pw := range d.partitions {
		op := pw.CurrentOperation()
		if op != nil && op.CallerAddress == callerAddress && op.PartitionID == partitionID && op.CallID == callID {
			return true
		}
	}
	for _, gw := range d.generic.Workers() {
		op := gw.CurrentOperation()
		if op != nil && op.CallerAddress == callerAddress && op.PartitionID == partitionID && op.CallID == callID {
			return true
		}
	}
	return false
}

// PartitionQueueDepths satisfies metrics.StatsSource: per-partition [work,
// priority] depth pairs.
func (d *Dispatcher) PartitionQueueDepths() map[int][2]int {
	depths := make(map[int][2]int, len(d.partitions))
	for _, pw := range d.partitions {
		work, priority := pw.QueueDepths()
		depths[pw.threadID] = [2]int{work, priority}
	}
	return depths
}

// GenericQueueDepth satisfies metrics.StatsSource.
func (d *Dispatcher) GenericQueueDepth() [2]int {
	work, priority := d.generic.QueueDepths()
	return [2]int{work, priority}
}

// ResponseQueueDepth satisfies metrics.StatsSource.
func (d *Dispatcher) ResponseQueueDepth() int {
	return d.response.QueueDepth()
}

// WorkersAlive satisfies metrics.StatsSource. It reports the configured pool
// sizes, P and G; goroutines that have exited (after Shutdown, or a partition
// worker left stopped under RestartPolicyEscalate) are still counted.
func (d *Dispatcher) WorkersAlive() (partition, generic int) {
	return len(d.partitions), d.cfg.GenericWorkers
}

// Shutdown stops accepting new work, closes every queue so blocked workers
// wake and drain, then waits for all worker goroutines to exit or ctx's
// deadline to pass, whichever comes first. DefaultShutdownTimeout derives a
// generous deadline to set on ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.shutdown.Store(true)

	for _, pw := range d.partitions {
		pw.work.Close()
	}
	d.generic.work.Close()
	d.response.work.Close()

	if d.events != nil {
		d.events.Publish(&events.Event{Type: events.EventSchedulerStopped})
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DefaultShutdownTimeout derives a generous deadline from the configured
// per-worker termination timeout and the total worker count.
func (d *Dispatcher) DefaultShutdownTimeout() time.Duration {
	workers := d.partitionCount() + d.cfg.GenericWorkers + 1
	return time.Duration(d.cfg.TerminationTimeout) * time.Second * time.Duration(workers)
}
