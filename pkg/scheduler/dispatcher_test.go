package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/gridcore/pkg/config"
	"github.com/cuemby/gridcore/pkg/executor"
)

// recordingHandler satisfies OperationHandler and ResponseHandler, recording
// the thread_id the test's workerState running it observed via context, and
// an optional delay / panic to simulate long-running or faulting operations.
type recordingHandler struct {
	mu      sync.Mutex
	order   []uint64
	threads map[uint64]int

	delay map[uint64]time.Duration
	panic map[uint64]any

	processed atomic.Int64
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		threads: make(map[uint64]int),
		delay:   make(map[uint64]time.Duration),
		panic:   make(map[uint64]any),
	}
}

func (h *recordingHandler) Deserialize(pkt *Packet) (*Operation, error) {
	return nil, nil
}

func (h *recordingHandler) Process(ctx context.Context, op *Operation) error {
	h.mu.Lock()
	if d, ok := h.delay[op.CallID]; ok {
		h.mu.Unlock()
		time.Sleep(d)
		h.mu.Lock()
	}
	role := RoleFromContext(ctx)
	h.order = append(h.order, op.CallID)
	h.threads[op.CallID] = role.PartitionID
	p := h.panic[op.CallID]
	h.mu.Unlock()

	h.processed.Add(1)

	if p != nil {
		panic(p)
	}
	return nil
}

func (h *recordingHandler) Order() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint64, len(h.order))
	copy(out, h.order)
	return out
}

func (h *recordingHandler) ThreadFor(callID uint64) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.threads[callID]
	return t, ok
}

type noopResponseHandler struct {
	processed atomic.Int64
}

func (r *noopResponseHandler) Deserialize(pkt *Packet) (*Response, error) {
	return &Response{CallID: 1}, nil
}

func (r *noopResponseHandler) Process(ctx context.Context, resp *Response) error {
	r.processed.Add(1)
	return nil
}

func testConfig(partitions, generic int) config.Config {
	cfg := config.Default()
	cfg.PartitionWorkers = partitions
	cfg.GenericWorkers = generic
	cfg.WorkerRestartPolicy = config.RestartPolicyRespawn
	return cfg
}

func newTestDispatcher(t *testing.T, partitions, generic int, opHandler OperationHandler, respHandler ResponseHandler) (*Dispatcher, context.CancelFunc) {
	t.Helper()
	reg := executor.NewRegistry()
	d := New(testConfig(partitions, generic), opHandler, respHandler, reg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	return d, cancel
}

// S1: P = 4. Submit non-urgent op with partition_id = 9 then partition_id =
// 5. Both land on thread_id = 1 (9 mod 4 = 1, 5 mod 4 = 1), op(9) before
// op(5).
func TestDispatcher_PartitionAffinityAndFIFOOrdering(t *testing.T) {
	h := newRecordingHandler()
	d, cancel := newTestDispatcher(t, 4, 2, h, &noopResponseHandler{})
	defer cancel()

	require.NoError(t, d.Submit(&Operation{PartitionID: 9, PartitionAware: true, CallID: 9}))
	require.NoError(t, d.Submit(&Operation{PartitionID: 5, PartitionAware: true, CallID: 5}))

	require.Eventually(t, func() bool { return len(h.Order()) == 2 }, time.Second, time.Millisecond)

	order := h.Order()
	assert.Equal(t, []uint64{9, 5}, order)

	t9, ok := h.ThreadFor(9)
	require.True(t, ok)
	t5, ok := h.ThreadFor(5)
	require.True(t, ok)
	assert.Equal(t, 1, t9)
	assert.Equal(t, 1, t5)
}

// S2: P = 4. Submit non-urgent A (partition 2) that sleeps; before A
// completes, submit urgent B (partition 2) and non-urgent C (partition 2).
// Expected completion order: A, B, C - A was already running when B arrived,
// so the priority queue only affects ordering of work still queued.
func TestDispatcher_UrgentPreemptsQueuedNotRunning(t *testing.T) {
	h := newRecordingHandler()
	h.delay[1] = 50 * time.Millisecond
	d, cancel := newTestDispatcher(t, 4, 2, h, &noopResponseHandler{})
	defer cancel()

	require.NoError(t, d.Submit(&Operation{PartitionID: 2, PartitionAware: true, CallID: 1}))
	time.Sleep(10 * time.Millisecond) // let A start running before B/C arrive

	require.NoError(t, d.Submit(&Operation{PartitionID: 2, PartitionAware: true, CallID: 2, IsUrgent: true}))
	require.NoError(t, d.Submit(&Operation{PartitionID: 2, PartitionAware: true, CallID: 3}))

	require.Eventually(t, func() bool { return len(h.Order()) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []uint64{1, 2, 3}, h.Order())
}

// S3: P = 4, worker for partition 3 idle on take(). Submit only an urgent op
// with partition_id = 3. The op must execute - proving the wakeup sentinel
// unblocks an idle worker.
func TestDispatcher_UrgentWakesIdleWorker(t *testing.T) {
	h := newRecordingHandler()
	d, cancel := newTestDispatcher(t, 4, 2, h, &noopResponseHandler{})
	defer cancel()

	time.Sleep(10 * time.Millisecond) // let the worker settle into Take()

	require.NoError(t, d.Submit(&Operation{PartitionID: 3, PartitionAware: true, CallID: 42, IsUrgent: true}))

	require.Eventually(t, func() bool { return len(h.Order()) == 1 }, time.Second, time.Millisecond)
	thread, ok := h.ThreadFor(42)
	require.True(t, ok)
	assert.Equal(t, 3, thread)
}

// S4: an operation with both ExecutorName and PartitionAware set is
// InvalidRouting; no thread touches it.
func TestDispatcher_ExecutorNamedPartitionAwareIsInvalidRouting(t *testing.T) {
	h := newRecordingHandler()
	d, cancel := newTestDispatcher(t, 4, 2, h, &noopResponseHandler{})
	defer cancel()

	err := d.Submit(&Operation{PartitionID: 1, PartitionAware: true, ExecutorName: "X", CallID: 99})
	require.ErrorIs(t, err, ErrInvalidRouting)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, h.Order())
}

// S5: a packet with the RESPONSE header routes to the response worker
// regardless of partition_id; no operation worker's processed_count
// increases.
func TestDispatcher_ResponsePacketRoutesToResponseWorker(t *testing.T) {
	h := newRecordingHandler()
	resp := &noopResponseHandler{}
	d, cancel := newTestDispatcher(t, 4, 2, h, resp)
	defer cancel()

	before := make([]uint64, len(d.partitions))
	for i, pw := range d.partitions {
		before[i] = pw.ProcessedCount()
	}

	require.NoError(t, d.SubmitPacket(&Packet{
		Header:      PacketHeader{Response: true},
		PartitionID: 2,
		Payload:     []byte("irrelevant"),
	}))

	require.Eventually(t, func() bool { return resp.processed.Load() == 1 }, time.Second, time.Millisecond)

	for i, pw := range d.partitions {
		assert.Equal(t, before[i], pw.ProcessedCount())
	}
	assert.Empty(t, h.Order())
}

// S6: Shutdown with many queued non-urgent tasks completes within the
// derived deadline, and IsOperationExecuting is false for everything
// afterward.
func TestDispatcher_ShutdownDrainsQueueAndJoinsWorkers(t *testing.T) {
	h := newRecordingHandler()
	d, cancel := newTestDispatcher(t, 4, 2, h, &noopResponseHandler{})
	defer cancel()

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, d.Submit(&Operation{PartitionID: i % 4, PartitionAware: true, CallID: uint64(i)}))
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), d.DefaultShutdownTimeout())
	defer cancelShutdown()
	require.NoError(t, d.Shutdown(ctx))

	assert.Equal(t, n, len(h.Order()))
	assert.False(t, d.IsOperationExecuting("", 0, 0))

	err := d.Submit(&Operation{PartitionID: 0, PartitionAware: true, CallID: 99999})
	assert.ErrorIs(t, err, ErrShutdown)
}

// Invariant 1: for a given partition, operations never overlap temporally -
// verified by having each operation record its own entry/exit and asserting
// no two on the same partition overlap.
func TestDispatcher_SamePartitionOperationsNeverOverlap(t *testing.T) {
	var mu sync.Mutex
	var active int
	var overlapped bool

	blocking := &blockingOpHandler{
		before: func() {
			mu.Lock()
			active++
			if active > 1 {
				overlapped = true
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		},
		after: func() {
			mu.Lock()
			active--
			mu.Unlock()
		},
	}

	d, cancel := newTestDispatcher(t, 2, 1, blocking, &noopResponseHandler{})
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = d.Submit(&Operation{PartitionID: 0, PartitionAware: true, CallID: uint64(i)})
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return blocking.completed.Load() == 20 }, 2*time.Second, time.Millisecond)
	assert.False(t, overlapped)
}

type blockingOpHandler struct {
	before    func()
	after     func()
	completed atomic.Int64
}

func (b *blockingOpHandler) Deserialize(pkt *Packet) (*Operation, error) { return nil, nil }

func (b *blockingOpHandler) Process(ctx context.Context, op *Operation) error {
	b.before()
	b.after()
	b.completed.Add(1)
	return nil
}

func TestDispatcher_GenericOperationsIgnorePartitionRouting(t *testing.T) {
	h := newRecordingHandler()
	d, cancel := newTestDispatcher(t, 4, 3, h, &noopResponseHandler{})
	defer cancel()

	require.NoError(t, d.Submit(&Operation{PartitionID: -1, PartitionAware: false, CallID: 7}))
	require.Eventually(t, func() bool { return len(h.Order()) == 1 }, time.Second, time.Millisecond)
}

// Invariant 4: is_operation_executing and the running-operation count must
// see work in flight on a generic worker, not just on partition workers.
func TestDispatcher_IsOperationExecuting_SeesGenericWorkers(t *testing.T) {
	gated := &gatedOpHandler{release: make(chan struct{}), started: make(chan struct{})}
	d, cancel := newTestDispatcher(t, 2, 2, gated, &noopResponseHandler{})
	defer cancel()

	require.NoError(t, d.Submit(&Operation{PartitionID: -1, PartitionAware: false, CallerAddress: "caller-a", CallID: 42}))

	<-gated.started
	assert.True(t, d.IsOperationExecuting("caller-a", -1, 42))
	assert.Equal(t, 1, d.RunningOperationCount())

	close(gated.release)
	require.Eventually(t, func() bool { return !d.IsOperationExecuting("caller-a", -1, 42) }, time.Second, time.Millisecond)
	assert.Equal(t, 0, d.RunningOperationCount())
}

// gatedOpHandler blocks Process until release is closed, signaling started
// once it begins, so a test can observe the operation while still running.
type gatedOpHandler struct {
	release chan struct{}
	started chan struct{}
}

func (g *gatedOpHandler) Deserialize(pkt *Packet) (*Operation, error) { return nil, nil }

func (g *gatedOpHandler) Process(ctx context.Context, op *Operation) error {
	close(g.started)
	<-g.release
	return nil
}
