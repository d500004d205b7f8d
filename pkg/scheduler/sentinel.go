package scheduler

// wakeupSentinel is the singleton no-op task enqueued on a blockingQueue
// solely to return control from a worker blocked in Take() so it goes on to
// drain its priorityQueue. It is never allocated per submission - every
// urgent route() call enqueues this same *Task pointer.
var wakeupSentinel = &Task{Kind: KindRunnable, Runnable: func() {}}

// isWakeupSentinel reports whether task is the singleton wakeup sentinel, by
// pointer identity rather than by inspecting its contents.
func isWakeupSentinel(task *Task) bool {
	return task == wakeupSentinel
}
