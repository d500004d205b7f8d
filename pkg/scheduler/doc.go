/*
Package scheduler implements the dispatch core: a single Dispatcher that
routes operations, runnables, and wire packets onto a fixed pool of
partition workers, a shared pool of generic workers, and one response
worker, preserving per-partition serialization while letting unrelated
partitions run fully in parallel.

# Architecture

	┌──────────────────────────────────────────────────────────────┐
	│                        Dispatcher                           │
	│   Submit(op) / SubmitRunnable(fn) / SubmitPacket(pkt)        │
	└───────────────────────────┬───────────────────────────────────┘
	                            │ route(task, partition_id, urgent)
	            ┌───────────────┼────────────────┬─────────────────┐
	            ▼               ▼                ▼                 ▼
	      partition[0]    partition[p mod P]  generic pool   response worker
	      work + prio     work + prio         shared queues  work queue only
	      queues          queues              (G goroutines)  (no priority)

Each partition worker owns a private blocking FIFO and a private
non-blocking priority queue; partition p is always served by exactly
partition_workers[p mod P], for the lifetime of the dispatcher. Generic
workers share one FIFO and one priority queue across G goroutines -
partition-unaware work is picked up by whichever goroutine is free.

# Core Components

Dispatcher: owns every worker and is the only thing callers submit to.

	d := scheduler.New(cfg, opHandler, respHandler, executors, broker)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	defer d.Shutdown(context.Background())

	err := d.Submit(&scheduler.Operation{
		PartitionID:    7,
		PartitionAware: true,
		CallerAddress:  "client-42",
		CallID:         1,
	})

Task: the sum type placed on a queue - exactly one of Operation, Packet, or
Runnable is populated, tagged by Kind rather than hidden behind an
interface, since a worker must know which field to read.

blockingQueue / priorityQueue: the two queues behind every worker. A
worker blocks in blockingQueue.Take() until either an item arrives or the
queue is closed; between FIFO pulls it drains priorityQueue.Poll() to
completion. An urgent submission enqueues its task on the priority queue
and puts the singleton wakeupSentinel on the FIFO purely to unblock a
worker sitting in Take() - see sentinel.go.

ThreadRole / MayRunHere / MayInvokeHere: the context-carried identity a
goroutine declares before invoking a handler callback synchronously, and
the predicates that decide whether doing so is safe. Go has no
current-thread lookup, so role travels explicitly on a context.Context
rather than goroutine-local state.

faultguard.Fault: every task is processed inside a deferred recover();
the recovered value is classified fatal or operation-level. A fatal
classification unwinds the worker loop; a partition worker then follows the
configured config.RestartPolicy, a generic worker slot is always respawned,
and the response worker logs the fault and keeps running. An
operation-level classification is logged and the worker keeps serving its
queue.

# Usage Examples

## Submitting partition-aware work

	err := d.Submit(&scheduler.Operation{
		PartitionID:    partitionID,
		PartitionAware: true,
		CallID:         callID,
		IsUrgent:       false,
	})

## Submitting an urgent operation to wake an idle worker

	err := d.Submit(&scheduler.Operation{
		PartitionID:    partitionID,
		PartitionAware: true,
		CallID:         callID,
		IsUrgent:       true,
	})

## Routing to a named executor instead of a partition

	err := d.Submit(&scheduler.Operation{
		ExecutorName: "io-bound-work",
		CallID:       callID,
	})

Executor-routed operations must be neither partition-aware nor urgent;
submitting one that is either returns ErrInvalidRouting.

# Integration Points

  - pkg/executor - named executor pools for ExecutorName-tagged operations
  - pkg/faultguard - panic classification shared by every worker loop
  - pkg/metrics - Dispatcher implements metrics.StatsSource for the
    background queue-depth/worker-count collector
  - pkg/events - worker escalation and scheduler start/stop events
  - pkg/config - partition/generic pool sizing and restart policy
  - cmd/gridcore - process wiring: builds the Dispatcher and serves
    pkg/api alongside it

# Design Patterns

## Single-writer discipline

Each worker's current_operation and processed_count are written only by
the goroutine that owns them, via atomic.Pointer and atomic.Uint64; every
other goroutine only reads them. This avoids a mutex on the hot path
without risking a torn read.

## Build the queue backpressure later, not now

Queues are unbounded in this revision - Put never fails. Config.
QueueSoftLimit is parsed from the config file, but no component reads it
and nothing bounds a queue.

# See Also

  - pkg/executor - executor registry
  - pkg/faultguard - fault classification
  - pkg/config - sizing and restart policy
  - pkg/metrics - dispatcher-fed gauges and counters
*/
package scheduler
