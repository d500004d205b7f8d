package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingQueue_PutTakeFIFO(t *testing.T) {
	q := newBlockingQueue()
	t1 := &Task{Kind: KindRunnable, Runnable: func() {}}
	t2 := &Task{Kind: KindRunnable, Runnable: func() {}}

	q.Put(t1)
	q.Put(t2)

	got1, ok := q.Take()
	require.True(t, ok)
	assert.Same(t, t1, got1)

	got2, ok := q.Take()
	require.True(t, ok)
	assert.Same(t, t2, got2)
}

func TestBlockingQueue_TakeBlocksUntilPut(t *testing.T) {
	q := newBlockingQueue()
	task := &Task{Kind: KindRunnable, Runnable: func() {}}

	done := make(chan *Task, 1)
	go func() {
		got, ok := q.Take()
		if ok {
			done <- got
		} else {
			done <- nil
		}
	}()

	select {
	case <-done:
		t.Fatal("Take returned before any item was put")
	case <-time.After(20 * time.Millisecond):
	}

	q.Put(task)

	select {
	case got := <-done:
		assert.Same(t, task, got)
	case <-time.After(time.Second):
		t.Fatal("Take did not unblock after Put")
	}
}

func TestBlockingQueue_CloseDrainsThenStops(t *testing.T) {
	q := newBlockingQueue()
	q.Put(&Task{Kind: KindRunnable, Runnable: func() {}})
	q.Put(&Task{Kind: KindRunnable, Runnable: func() {}})
	q.Close()

	_, ok := q.Take()
	assert.True(t, ok, "queued item must still be delivered after Close")
	_, ok = q.Take()
	assert.True(t, ok, "second queued item must still be delivered after Close")

	_, ok = q.Take()
	assert.False(t, ok, "Take must report closed once drained")
}

func TestBlockingQueue_CloseWakesBlockedReader(t *testing.T) {
	q := newBlockingQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Take()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake a blocked Take")
	}
}

func TestPriorityQueue_PollNonBlocking(t *testing.T) {
	q := newPriorityQueue()
	_, ok := q.Poll()
	assert.False(t, ok)

	t1 := &Task{Kind: KindRunnable, Runnable: func() {}}
	q.Put(t1)
	assert.Equal(t, 1, q.Len())

	got, ok := q.Poll()
	require.True(t, ok)
	assert.Same(t, t1, got)
	assert.Equal(t, 0, q.Len())
}

func TestWakeupSentinel_IsSingletonByIdentity(t *testing.T) {
	assert.True(t, isWakeupSentinel(wakeupSentinel))

	other := &Task{Kind: KindRunnable, Runnable: func() {}}
	assert.False(t, isWakeupSentinel(other))
}
