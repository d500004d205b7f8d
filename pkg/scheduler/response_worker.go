package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cuemby/gridcore/pkg/faultguard"
	"github.com/cuemby/gridcore/pkg/log"
	"github.com/cuemby/gridcore/pkg/metrics"
)

// responseWorker is the single goroutine draining the response queue. It
// carries no priority queue - every response is handled FIFO - and it
// never exits on a fault of any classification, including fatal: a single
// malformed response must not stall the rest of the response queue, so
// even an OOM-classified panic here is logged and swallowed rather than
// propagated.
type responseWorker struct {
	work        *blockingQueue
	respHandler ResponseHandler
}

func newResponseWorker(respHandler ResponseHandler) *responseWorker {
	return &responseWorker{
		work:        newBlockingQueue(),
		respHandler: respHandler,
	}
}

func (rw *responseWorker) QueueDepth() int {
	return rw.work.Len()
}

func (rw *responseWorker) run(ctx context.Context) {
	ctx = WithRole(ctx, ThreadRole{Kind: RoleResponseWorker, PartitionID: -1})
	logger := log.WithThread("response")

	for {
		task, ok := rw.work.Take()
		if !ok {
			return
		}
		rw.process(ctx, task, logger)
	}
}

func (rw *responseWorker) process(ctx context.Context, task *Task, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			f := faultguard.Classify(r)
			logger.Error().
				Interface("panic", r).
				Str("classification", string(f.Classification)).
				Msg("response fault recovered, worker continues regardless of classification")
			metrics.TaskFaultsTotal.WithLabelValues("operation_fault").Inc()
		}
	}()

	if task.Kind != KindPacket || task.Packet == nil {
		return
	}

	resp, err := rw.respHandler.Deserialize(task.Packet)
	if err != nil {
		logger.Error().Err(err).Msg("response deserialization fault")
		metrics.TaskFaultsTotal.WithLabelValues("deserialization_fault").Inc()
		return
	}
	if resp == nil {
		return
	}

	if err := rw.respHandler.Process(ctx, resp); err != nil {
		logger.Error().Err(err).Uint64("call_id", resp.CallID).Msg("response processing fault")
		metrics.TaskFaultsTotal.WithLabelValues("operation_fault").Inc()
	}
}
