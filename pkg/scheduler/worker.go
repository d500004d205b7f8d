package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cuemby/gridcore/pkg/faultguard"
	"github.com/cuemby/gridcore/pkg/metrics"
)

// workerState holds the fields a worker goroutine owns exclusively, per
// the single-writer discipline: currentOperation and processedCount
// are written only by the goroutine that embeds this struct, and read by
// everyone else through the atomics below.
type workerState struct {
	threadID  int
	kindLabel string // "partition", "generic", used as the metrics label

	work     *blockingQueue
	priority *priorityQueue

	currentOperation atomic.Pointer[Operation]
	processedCount   atomic.Uint64
}

// CurrentOperation returns the operation currently executing on this
// worker, or nil if it is idle. Safe to call from any goroutine.
func (w *workerState) CurrentOperation() *Operation {
	return w.currentOperation.Load()
}

// ProcessedCount returns the number of tasks this worker has processed so
// far. Safe to call from any goroutine.
func (w *workerState) ProcessedCount() uint64 {
	return w.processedCount.Load()
}

// QueueDepths returns the current depth of this worker's blocking and
// priority queues.
func (w *workerState) QueueDepths() (work, priority int) {
	return w.work.Len(), w.priority.Len()
}

// runWorkerLoop implements the steady-state loop shared by partition and
// generic workers: block on the FIFO, drain the priority
// queue to completion, process the FIFO item, repeat. It returns a non-nil
// fault only when a fatal panic was recovered, so the caller can apply the
// configured worker-restart policy; a nil return means the queue was closed
// (ordinary shutdown).
func runWorkerLoop(ctx context.Context, w *workerState, opHandler OperationHandler, logger zerolog.Logger) *faultguard.Fault {
	for {
		task, ok := w.work.Take()
		if !ok {
			return nil
		}

		for {
			pTask, has := w.priority.Poll()
			if !has {
				break
			}
			if fault := processTask(ctx, w, pTask, opHandler, logger); fault != nil {
				return fault
			}
		}

		if fault := processTask(ctx, w, task, opHandler, logger); fault != nil {
			return fault
		}
	}
}

// processTask runs one task to completion, recovering and classifying any
// panic. A fatal classification is returned to the caller so the worker
// loop can exit; an operation-level fault is logged and absorbed, matching
// the rule that every user exception is logged while the worker continues.
func processTask(ctx context.Context, w *workerState, task *Task, opHandler OperationHandler, logger zerolog.Logger) (fault *faultguard.Fault) {
	w.processedCount.Add(1)

	if isWakeupSentinel(task) {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			f := faultguard.Classify(r)
			if f.Classification == faultguard.ClassificationFatal {
				logger.Error().
					Interface("panic", r).
					Str("classification", string(f.Classification)).
					Msg("fatal fault recovered, worker exiting")
				metrics.TaskFaultsTotal.WithLabelValues("fatal_vm_error").Inc()
				fault = f
				return
			}
			logger.Error().
				Interface("panic", r).
				Str("classification", string(f.Classification)).
				Msg("operation fault recovered, worker continues")
			metrics.TaskFaultsTotal.WithLabelValues("operation_fault").Inc()
		}
	}()

	switch task.Kind {
	case KindRunnable:
		task.Runnable()
		metrics.TasksProcessedTotal.WithLabelValues(w.kindLabel, "runnable").Inc()

	case KindPacket:
		op, err := opHandler.Deserialize(task.Packet)
		if err != nil {
			logger.Error().Err(err).Msg("deserialization fault")
			metrics.TaskFaultsTotal.WithLabelValues("deserialization_fault").Inc()
			return nil
		}
		if op == nil {
			return nil
		}
		runOperationOn(ctx, w, op, opHandler, logger)
		metrics.TasksProcessedTotal.WithLabelValues(w.kindLabel, "packet").Inc()

	case KindOperation:
		runOperationOn(ctx, w, task.Operation, opHandler, logger)
		metrics.TasksProcessedTotal.WithLabelValues(w.kindLabel, "operation").Inc()
	}

	return nil
}

// runOperationOn publishes op to current_operation for the duration of
// Process, clearing it in a defer so the clear runs even if Process panics
// (the panic still propagates to processTask's recover afterward).
func runOperationOn(ctx context.Context, w *workerState, op *Operation, opHandler OperationHandler, logger zerolog.Logger) {
	w.currentOperation.Store(op)
	defer w.currentOperation.Store(nil)

	timer := metrics.NewTimer()
	err := opHandler.Process(ctx, op)
	timer.ObserveDurationVec(metrics.OperationDuration, w.kindLabel, "operation")

	if err != nil {
		logger.Error().Err(err).
			Str("caller_address", op.CallerAddress).
			Uint64("call_id", op.CallID).
			Msg("operation fault")
		metrics.TaskFaultsTotal.WithLabelValues("operation_fault").Inc()
	}
}
