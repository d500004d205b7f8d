package scheduler

import "errors"

// Sentinel errors for the six error kinds of the dispatch core, plus
// ErrShutdown. The Submit methods return ErrInvalidRouting,
// ErrInvalidArgument and ErrShutdown, the first two wrapped with %w to add
// context, so use errors.Is against them. ErrRejected,
// ErrDeserializationFault, ErrOperationFault and ErrFatalVMError name fault
// kinds; no function in this package returns them.
var (
	// ErrInvalidRouting is raised when a named-executor operation is also
	// partition-aware or urgent - the two routing strategies are mutually
	// exclusive.
	ErrInvalidRouting = errors.New("scheduler: invalid routing")

	// ErrInvalidArgument is raised when a nil task is submitted.
	ErrInvalidArgument = errors.New("scheduler: invalid argument")

	// ErrRejected names an enqueue refused by an underlying queue. The queues
	// in this package are unbounded and never refuse, so it is not returned.
	ErrRejected = errors.New("scheduler: rejected")

	// ErrDeserializationFault names a packet that cannot be turned into an
	// operation or response. The worker logs the handler's error and drops
	// the packet; nothing reaches the submitter.
	ErrDeserializationFault = errors.New("scheduler: deserialization fault")

	// ErrOperationFault names a panic or error from user handler code. The
	// owning worker logs it and keeps serving its queue.
	ErrOperationFault = errors.New("scheduler: operation fault")

	// ErrFatalVMError names a panic faultguard classified as fatal. The
	// owning worker dies; the dispatcher's configured restart policy
	// decides what happens next.
	ErrFatalVMError = errors.New("scheduler: fatal vm error")

	// ErrShutdown is returned by Submit* once Shutdown has been called and
	// the dispatcher is no longer accepting new work.
	ErrShutdown = errors.New("scheduler: dispatcher is shut down")
)
