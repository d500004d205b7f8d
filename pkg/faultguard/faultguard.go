package faultguard

import (
	"fmt"
	"runtime"
	"strings"
)

// Classification describes the severity a recovered panic was assigned.
type Classification string

const (
	// ClassificationFatal marks a panic that should never be silently
	// absorbed: it must propagate to worker-restart policy, not be retried.
	ClassificationFatal Classification = "fatal"
	// ClassificationOperation marks a panic attributable to the operation's
	// own code, recoverable by the worker loop without tearing anything down.
	ClassificationOperation Classification = "operation"
)

// oomMarkers are substrings that, case-insensitively, indicate a panic value
// originated from an out-of-native-memory condition. Go has no
// OutOfMemoryError type to type-switch on, so classification falls back to
// string inspection of the recovered value, applied regardless of which
// worker recovered it.
var oomMarkers = []string{
	"out of memory",
	"cannot allocate memory",
	"runtime: out of memory",
}

// Fault is the classified result of a recovered panic, ready to be logged and
// handed to a worker's restart-policy decision.
type Fault struct {
	Classification Classification
	Value          any
	Stack          []byte
}

// Error implements the error interface so a Fault can be wrapped with %w.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault: %v", f.Classification, f.Value)
}

// Classify inspects a recovered panic value and returns its Fault
// classification. Call this immediately inside a deferred recover().
func Classify(recovered any) *Fault {
	stack := make([]byte, 8192)
	n := runtime.Stack(stack, false)

	f := &Fault{
		Value: recovered,
		Stack: stack[:n],
	}

	if isFatal(recovered) {
		f.Classification = ClassificationFatal
		return f
	}

	f.Classification = ClassificationOperation
	return f
}

func isFatal(recovered any) bool {
	// A runtime.Error (nil dereference, index out of range, divide by zero,
	// ...) indicates a VM-level invariant broke, not a recoverable
	// application error - treat it as fatal.
	if _, ok := recovered.(runtime.Error); ok {
		return true
	}

	text := fmt.Sprintf("%v", recovered)
	lower := strings.ToLower(text)
	for _, marker := range oomMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}
