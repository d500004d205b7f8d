package scheduler

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cuemby/gridcore/pkg/config"
	"github.com/cuemby/gridcore/pkg/log"
	"github.com/cuemby/gridcore/pkg/metrics"
)

// partitionWorker owns one partition's work and priority queues exclusively.
// Exactly one partitionWorker exists per partition_id % P, for the lifetime
// of the dispatcher, modulo restarts under RestartPolicyRespawn.
type partitionWorker struct {
	*workerState
	opHandler OperationHandler
	policy    config.RestartPolicy
	onFatal   func(threadID int, fault error)
}

func newPartitionWorker(threadID int, opHandler OperationHandler, policy config.RestartPolicy, onFatal func(int, error)) *partitionWorker {
	return &partitionWorker{
		workerState: &workerState{
			threadID:  threadID,
			kindLabel: "partition",
			work:      newBlockingQueue(),
			priority:  newPriorityQueue(),
		},
		opHandler: opHandler,
		policy:    policy,
		onFatal:   onFatal,
	}
}

// run executes the worker loop on the calling goroutine until the queue is
// closed or a fatal fault is recovered. On a fatal fault it applies the
// configured restart policy: respawn spins up a fresh goroutine reusing this
// same partitionWorker's queues (so no enqueued work is lost), escalate
// reports the fault upward via onFatal without restarting.
func (pw *partitionWorker) run(ctx context.Context, metricsAlive func(delta int)) {
	role := ThreadRole{Kind: RolePartitionWorker, PartitionID: pw.threadID}
	ctx = WithRole(ctx, role)
	logger := log.WithPartition(pw.threadID)

	metricsAlive(1)
	defer metricsAlive(-1)

	fault := runWorkerLoop(ctx, pw.workerState, pw.opHandler, logger)
	if fault == nil {
		return
	}

	handlePartitionFault(pw, ctx, fault, logger, metricsAlive)
}

func handlePartitionFault(pw *partitionWorker, ctx context.Context, fault error, logger zerolog.Logger, metricsAlive func(delta int)) {
	switch pw.policy {
	case config.RestartPolicyRespawn:
		metrics.WorkersRespawnedTotal.WithLabelValues(partitionLabel(pw.threadID)).Inc()
		logger.Warn().Err(fault).Msg("partition worker respawning after fatal fault")
		go pw.run(ctx, metricsAlive)
	default: // RestartPolicyEscalate
		logger.Error().Err(fault).Msg("partition worker escalating fatal fault")
		if pw.onFatal != nil {
			pw.onFatal(pw.threadID, fault)
		}
	}
}

func partitionLabel(threadID int) string {
	return strconv.Itoa(threadID)
}
