package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/gridcore/pkg/metrics"
)

// ErrUnknownExecutor is returned when an operation names an executor that was
// never registered.
var ErrUnknownExecutor = fmt.Errorf("executor: unknown executor name")

// ErrPoolSaturated names a pool with no free concurrency slots.
// PoolExecutor.Submit does not return it: Submit waits for a free slot or
// for ctx to be cancelled.
var ErrPoolSaturated = fmt.Errorf("executor: pool saturated")

// Executor runs named, out-of-band work on behalf of an operation whose
// ExecutorName field selects it. Operations routed to a named executor must
// be neither partition-aware nor urgent (see scheduler.ErrInvalidRouting).
type Executor interface {
	// Submit runs fn on the executor's pool, blocking only long enough to
	// acquire a concurrency slot or for ctx to be cancelled.
	Submit(ctx context.Context, fn func(context.Context)) error
	// Name returns the name this executor is registered under.
	Name() string
}

// PoolExecutor is a semaphore-bounded worker pool: a reference Executor
// implementation, since nothing else in scope provides one and the
// dispatcher's named-executor routing rule needs a concrete target to test
// against.
type PoolExecutor struct {
	name string
	sem  chan struct{}
}

// NewPoolExecutor creates a named executor with the given concurrency limit.
func NewPoolExecutor(name string, concurrency int) *PoolExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PoolExecutor{
		name: name,
		sem:  make(chan struct{}, concurrency),
	}
}

// Name returns the executor's registered name.
func (p *PoolExecutor) Name() string {
	return p.name
}

// Submit acquires a concurrency slot, runs fn in its own goroutine, and
// releases the slot when fn returns. It blocks until a slot is free or ctx is
// cancelled, in which case ctx.Err() is returned without running fn.
func (p *PoolExecutor) Submit(ctx context.Context, fn func(context.Context)) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		defer func() { <-p.sem }()
		fn(ctx)
	}()

	metrics.ExecutorPoolSaturation.WithLabelValues(p.name).Set(p.saturation())
	return nil
}

func (p *PoolExecutor) saturation() float64 {
	return float64(len(p.sem)) / float64(cap(p.sem))
}

// Registry is a thread-safe, name-keyed lookup of Executors, satisfying the
// named executor registry interface the dispatcher consumes.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds an executor under its own name, replacing any prior
// registration with the same name.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Name()] = e
}

// Lookup returns the executor registered under name, or ErrUnknownExecutor.
func (r *Registry) Lookup(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExecutor, name)
	}
	return e, nil
}

// Submit looks up name and submits fn to it in one call, the shape the
// dispatcher uses when routing an ExecutorName-tagged operation.
func (r *Registry) Submit(ctx context.Context, name string, fn func(context.Context)) error {
	e, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return e.Submit(ctx, fn)
}
