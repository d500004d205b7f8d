package scheduler

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/cuemby/gridcore/pkg/log"
	"github.com/cuemby/gridcore/pkg/metrics"
)

// genericWorkerPool is G goroutines competing on one shared work queue and
// one shared priority queue - a work-stealing pool. Unlike
// partition workers, generic workers carry no partition identity - a fatal
// fault on one goroutine respawns that slot against the same shared queues
// rather than preserving any per-worker state.
type genericWorkerPool struct {
	work     *blockingQueue
	priority *priorityQueue

	opHandler OperationHandler
	size      int

	// slots holds each goroutine's current workerState, indexed by slot. A
	// respawn after a fatal fault stores a fresh workerState in its slot, so
	// readers always see either the live worker or its just-started
	// replacement, never a stale one.
	slots []atomic.Pointer[workerState]
}

func newGenericWorkerPool(size int, opHandler OperationHandler) *genericWorkerPool {
	return &genericWorkerPool{
		work:      newBlockingQueue(),
		priority:  newPriorityQueue(),
		opHandler: opHandler,
		size:      size,
		slots:     make([]atomic.Pointer[workerState], size),
	}
}

// Workers returns a snapshot of every slot's current workerState, for the
// dispatcher's RunningOperationCount and IsOperationExecuting queries to scan
// alongside the partition workers.
func (p *genericWorkerPool) Workers() []*workerState {
	workers := make([]*workerState, 0, len(p.slots))
	for i := range p.slots {
		if ws := p.slots[i].Load(); ws != nil {
			workers = append(workers, ws)
		}
	}
	return workers
}

// QueueDepths reports the shared queue depths visible to every goroutine in
// the pool.
func (p *genericWorkerPool) QueueDepths() (work, priority int) {
	return p.work.Len(), p.priority.Len()
}

// start launches size goroutines, each running the shared worker loop
// against the pool's shared queues. metricsAlive(delta) is called on start
// and on a fatal exit of any one goroutine, so WorkersAlive tracks the live
// pool size.
func (p *genericWorkerPool) start(ctx context.Context, metricsAlive func(delta int)) {
	for i := 0; i < p.size; i++ {
		go p.runOne(ctx, i, metricsAlive)
	}
}

func (p *genericWorkerPool) runOne(ctx context.Context, slot int, metricsAlive func(delta int)) {
	role := ThreadRole{Kind: RoleGenericWorker, PartitionID: -1}
	ctx = WithRole(ctx, role)
	logger := log.WithThread("generic-" + strconv.Itoa(slot))

	state := &workerState{
		threadID:  slot,
		kindLabel: "generic",
		work:      p.work,
		priority:  p.priority,
	}
	p.slots[slot].Store(state)

	metricsAlive(1)
	defer metricsAlive(-1)

	fault := runWorkerLoop(ctx, state, p.opHandler, logger)
	if fault == nil {
		return
	}

	logger.Error().Err(fault).Msg("generic worker exiting after fatal fault")
	metrics.WorkersRespawnedTotal.WithLabelValues("generic").Inc()
	go p.runOne(ctx, slot, metricsAlive)
}
