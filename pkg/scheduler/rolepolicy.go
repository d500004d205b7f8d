package scheduler

import "context"

// RoleKind identifies the kind of goroutine asking a thread-role predicate a
// question. Go has no Thread.currentThread() analogue, so role is carried
// explicitly on a context.Context rather than read from goroutine-local
// state.
type RoleKind int

const (
	// RoleUser is the default role for any goroutine that never declared
	// itself otherwise - a caller sitting outside the scheduler entirely.
	RoleUser RoleKind = iota
	// RoleIO marks a goroutine dedicated to network I/O. Must never run or
	// invoke an operation synchronously.
	RoleIO
	// RolePartitionWorker marks one of the dispatcher's partition worker
	// goroutines. PartitionID identifies which one.
	RolePartitionWorker
	// RoleGenericWorker marks one of the dispatcher's generic worker
	// goroutines.
	RoleGenericWorker
	// RoleResponseWorker marks the single response worker goroutine.
	RoleResponseWorker
)

// ThreadRole is the identity a goroutine declares before invoking handler
// callbacks or asking may_run_here / may_invoke_here about itself.
type ThreadRole struct {
	Kind        RoleKind
	PartitionID int
}

type roleContextKey struct{}

// WithRole returns a context carrying role, for the calling goroutine to pass
// down into anything that checks MayRunHere/MayInvokeHere on its behalf.
// Worker loops call this once at startup and reuse the resulting context for
// every task they process; I/O threads and user threads set it explicitly at
// their entry point.
func WithRole(ctx context.Context, role ThreadRole) context.Context {
	return context.WithValue(ctx, roleContextKey{}, role)
}

// RoleFromContext extracts the ThreadRole carried by ctx, defaulting to
// RoleUser if none was set.
func RoleFromContext(ctx context.Context) ThreadRole {
	role, ok := ctx.Value(roleContextKey{}).(ThreadRole)
	if !ok {
		return ThreadRole{Kind: RoleUser}
	}
	return role
}

// MayRunHere reports whether the goroutine identified by ctx may execute an
// operation with the given partitionID synchronously on itself. This
// predicate does not change the scheduler's own behavior - it exists for
// the calling layer to decide between synchronous local execution and
// queue-based dispatch.
func (d *Dispatcher) MayRunHere(ctx context.Context, partitionID int) bool {
	role := RoleFromContext(ctx)

	if role.Kind == RoleIO {
		return false
	}
	if partitionID < 0 {
		return true
	}
	if role.Kind != RolePartitionWorker {
		return false
	}
	return role.PartitionID == partitionID%d.partitionCount()
}

// MayInvokeHere reports whether the goroutine identified by ctx may submit
// and potentially wait on op without risking a cross-partition deadlock.
func (d *Dispatcher) MayInvokeHere(ctx context.Context, op *Operation) bool {
	role := RoleFromContext(ctx)

	effectivePartition := -1
	if op != nil && op.PartitionAware {
		effectivePartition = op.PartitionID
	}

	switch role.Kind {
	case RolePartitionWorker:
		if effectivePartition < 0 {
			return true
		}
		return role.PartitionID == effectivePartition%d.partitionCount()
	case RoleGenericWorker, RoleResponseWorker:
		return true
	case RoleIO:
		return false
	default: // RoleUser
		return true
	}
}
