/*
Package faultguard classifies recovered panics into fatal and
operation-level faults.

Go has no OutOfMemoryError or checked-exception hierarchy to type-switch on,
so classification falls back to inspecting the recovered value: a
runtime.Error (nil dereference, index out of range, integer divide by zero)
is always fatal; a panic value whose string form mentions an
out-of-native-memory condition is fatal; everything else is an
operation-level fault the worker loop can absorb and keep running.

Worker loops call faultguard.Classify inside their deferred recover() and
use the returned Fault.Classification to decide whether to keep serving the
queue or to let the worker die and trigger the configured restart policy
(config.RestartPolicyRespawn or config.RestartPolicyEscalate).
*/
package faultguard
