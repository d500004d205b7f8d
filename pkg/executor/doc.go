/*
Package executor provides a reference implementation of the named executor
registry that the scheduler's dispatcher consumes: a lookup of
named, semaphore-bounded worker pools for operations that specify an
ExecutorName instead of a partition.

Grounded on noisefs's two-tier worker-pool design (pkg/common/workers): where
noisefs offers a full-featured Pool alongside a lightweight
semaphore-based SimpleWorkerPool, gridcore needs only the latter's
concurrency-limiting shape, generalized to a named, swappable registry rather
than a single fixed pool.

# Usage

	reg := executor.NewRegistry()
	reg.Register(executor.NewPoolExecutor("image-pull", 4))

	err := reg.Submit(ctx, "image-pull", func(ctx context.Context) {
		pullImage(ctx, ref)
	})

A dispatcher rejects any operation that names an executor AND sets
PartitionAware or IsUrgent - named-executor work is explicitly
unordered, best-effort background work, not part of the partition or
priority guarantees the rest of the scheduler provides.
*/
package executor
