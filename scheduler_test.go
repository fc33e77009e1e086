package sunburst

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeRenderer advances the clock by cost on every pass.
type fakeRenderer struct {
	clock *fakeClock

	mu      sync.Mutex
	cost    time.Duration
	err     error
	panicOn bool
	block   chan struct{}
	calls   []Fidelity
}

func (r *fakeRenderer) set(fn func(r *fakeRenderer)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

func (r *fakeRenderer) Render(_ context.Context, f Frame, _ *Progress) (image.Image, error) {
	r.mu.Lock()
	r.calls = append(r.calls, f.Fidelity)
	cost, err, panicOn, block := r.cost, r.err, r.panicOn, r.block
	r.mu.Unlock()

	if block != nil {
		<-block
	}
	r.clock.Advance(cost)
	if panicOn {
		panic("boom")
	}
	if err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (r *fakeRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRenderer) lastCall() Fidelity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

type recordingHost struct {
	mu         sync.Mutex
	started    []bool // background flag per pass
	finished   []error
	repaints   int
	repaintsCh chan struct{}
}

func newRecordingHost() *recordingHost {
	return &recordingHost{repaintsCh: make(chan struct{}, 64)}
}

func (h *recordingHost) PassStarted(_ Fidelity, background bool) {
	h.mu.Lock()
	h.started = append(h.started, background)
	h.mu.Unlock()
}

func (h *recordingHost) PassFinished(_ Fidelity, _ time.Duration, err error) {
	h.mu.Lock()
	h.finished = append(h.finished, err)
	h.mu.Unlock()
}

func (h *recordingHost) Repaint() {
	h.mu.Lock()
	h.repaints++
	h.mu.Unlock()
	select {
	case h.repaintsCh <- struct{}{}:
	default:
	}
}

func (h *recordingHost) lastErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.finished) == 0 {
		return nil
	}
	return h.finished[len(h.finished)-1]
}

var emptySource = FrameSourceFunc(func(f Fidelity) Frame { return Frame{Fidelity: f} })

func newTestScheduler(t *testing.T, cost time.Duration) (*Scheduler, *fakeRenderer, *recordingHost, *fakeClock) {
	t.Helper()
	SetLogOutput(nil)
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock, cost: cost}
	h := newRecordingHost()
	s := NewScheduler(r, h, SchedulerConfig{})
	s.SetClock(clock.Now)
	t.Cleanup(s.Close)
	return s, r, h, clock
}

func waitPass(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestSchedulerFirstPassRunsInBackground(t *testing.T) {
	s, r, h, _ := newTestScheduler(t, 10*time.Millisecond)

	if img := s.Paint(emptySource, false); img != nil {
		t.Fatal("first Paint returned an image before any pass finished")
	}
	if !s.State().Pending {
		t.Fatal("first Full pass was not dispatched to the background")
	}
	waitPass(t, s)

	st := s.State()
	if !st.Valid || st.Fidelity != FidelityFull || s.Front() == nil {
		t.Fatalf("after background pass: %+v", st)
	}
	if st.NeedsProgressive || st.NeedsSimplify {
		t.Errorf("10ms pass left thresholds set: %+v", st)
	}
	if st.LastFrameCost != 10*time.Millisecond {
		t.Errorf("LastFrameCost = %v", st.LastFrameCost)
	}
	if len(h.started) != 1 || !h.started[0] {
		t.Errorf("host started = %v, want one background pass", h.started)
	}

	// Fast passes now run synchronously.
	s.Invalidate()
	s.Paint(emptySource, false)
	if s.State().Pending || !s.Valid() || r.callCount() != 2 {
		t.Errorf("second pass not synchronous: %+v, calls %d", s.State(), r.callCount())
	}
}

func TestSchedulerValidSkipsPass(t *testing.T) {
	s, r, _, _ := newTestScheduler(t, time.Millisecond)
	s.Paint(emptySource, false)
	waitPass(t, s)
	first := s.Front()
	for i := 0; i < 3; i++ {
		if img := s.Paint(emptySource, false); img != first {
			t.Fatal("valid Paint returned a different image")
		}
	}
	if r.callCount() != 1 {
		t.Errorf("calls = %d, want 1", r.callCount())
	}
}

func TestSchedulerSimplifiesWhileAdjusting(t *testing.T) {
	s, r, _, _ := newTestScheduler(t, 150*time.Millisecond)
	s.Paint(emptySource, false)
	waitPass(t, s)
	if !s.State().NeedsSimplify {
		t.Fatal("150ms pass did not set NeedsSimplify")
	}

	s.Invalidate()
	s.Paint(emptySource, true)
	if r.lastCall() != FidelitySimplified || s.State().Pending {
		t.Fatalf("adjusting Paint: last call %v, state %+v", r.lastCall(), s.State())
	}
	if s.State().Fidelity != FidelitySimplified {
		t.Errorf("front fidelity = %v", s.State().Fidelity)
	}

	// A simplified pass does not re-measure, however cheap it is.
	r.set(func(r *fakeRenderer) { r.cost = time.Millisecond })
	s.Invalidate()
	s.Paint(emptySource, true)
	if !s.State().NeedsSimplify {
		t.Error("Simplified pass cleared NeedsSimplify")
	}

	// Idle again: Full, synchronously because simplification is required.
	s.Invalidate()
	s.Paint(emptySource, false)
	if r.lastCall() != FidelityFull || s.State().Pending {
		t.Errorf("idle Paint: last call %v, state %+v", r.lastCall(), s.State())
	}
	if s.State().NeedsSimplify {
		t.Error("cheap Full pass did not clear NeedsSimplify")
	}
}

func TestSchedulerProgressiveWhenSlowAndIdle(t *testing.T) {
	s, r, _, _ := newTestScheduler(t, 50*time.Millisecond)
	s.Paint(emptySource, false)
	waitPass(t, s)
	st := s.State()
	if !st.NeedsProgressive || st.NeedsSimplify {
		t.Fatalf("50ms pass: %+v", st)
	}

	s.Invalidate()
	s.Paint(emptySource, false)
	if !s.State().Pending {
		t.Error("slow idle pass not dispatched to the background")
	}
	waitPass(t, s)

	// Dragging with only the progressive threshold exceeded: Full, in place.
	s.Invalidate()
	s.Paint(emptySource, true)
	if s.State().Pending || r.lastCall() != FidelityFull {
		t.Errorf("adjusting Paint: %+v, last %v", s.State(), r.lastCall())
	}
}

func TestSchedulerStaleBackgroundResultIsRerun(t *testing.T) {
	s, r, h, _ := newTestScheduler(t, 10*time.Millisecond)
	block := make(chan struct{})
	r.set(func(r *fakeRenderer) { r.block = block })

	s.Paint(emptySource, false)
	s.Invalidate()
	s.Paint(emptySource, false)
	s.Invalidate()
	if r.callCount() > 1 {
		t.Fatalf("second background pass started while one was outstanding")
	}

	r.set(func(r *fakeRenderer) { r.block = nil })
	close(block)
	waitPass(t, s)
	if s.Valid() || s.Front() != nil {
		t.Fatal("stale result was applied")
	}
	h.mu.Lock()
	repaints := h.repaints
	h.mu.Unlock()
	if repaints == 0 {
		t.Error("discarding a stale pass did not request a repaint")
	}

	// The thresholds were recomputed from the stale pass: 10ms is fast.
	s.Paint(emptySource, false)
	if !s.Valid() || r.callCount() != 2 {
		t.Errorf("re-run: valid %v, calls %d", s.Valid(), r.callCount())
	}
}

func TestSchedulerSlotHeldUntilCollected(t *testing.T) {
	s, r, _, _ := newTestScheduler(t, 10*time.Millisecond)
	block := make(chan struct{})
	r.set(func(r *fakeRenderer) { r.block = block })

	s.Paint(emptySource, false)
	if !s.State().Pending {
		t.Fatal("first pass was not dispatched")
	}
	if s.slot.TryAcquire(1) {
		s.slot.Release(1)
		t.Fatal("slot free while a background pass is outstanding")
	}

	// Neither a Full nor a Simplified pass may start while it runs.
	s.Invalidate()
	s.Paint(emptySource, false)
	s.needsSimplify = true
	s.Paint(emptySource, true)
	s.needsSimplify = false

	r.set(func(r *fakeRenderer) { r.block = nil })
	close(block)
	waitPass(t, s)
	if n := r.callCount(); n != 1 {
		t.Errorf("renderer calls = %d, want 1", n)
	}
	if !s.slot.TryAcquire(1) {
		t.Fatal("slot not released after the result was collected")
	}
	s.slot.Release(1)

	// Synchronous passes hand the slot back before Paint returns.
	s.Paint(emptySource, false)
	if !s.Valid() || r.callCount() != 2 {
		t.Fatalf("re-run: valid %v, calls %d", s.Valid(), r.callCount())
	}
	if !s.slot.TryAcquire(1) {
		t.Error("slot still held after a synchronous pass")
	}
	s.slot.Release(1)
}

func TestSchedulerErrorRetriesAfterTick(t *testing.T) {
	s, r, h, clock := newTestScheduler(t, time.Millisecond)
	s.Paint(emptySource, false)
	waitPass(t, s)
	good := s.Front()

	failure := errors.New("surface lost")
	r.set(func(r *fakeRenderer) { r.err = failure })
	s.Invalidate()
	if img := s.Paint(emptySource, false); img != good {
		t.Error("failed pass replaced the front image")
	}
	var pe *PassError
	if err := h.lastErr(); !errors.As(err, &pe) || !errors.Is(err, failure) {
		t.Fatalf("host error = %v, want PassError wrapping the failure", err)
	}
	if s.Valid() {
		t.Error("failed pass marked the scheduler valid")
	}

	s.Paint(emptySource, false)
	if r.callCount() != 2 {
		t.Errorf("retried before the tick interval: calls %d", r.callCount())
	}

	r.set(func(r *fakeRenderer) { r.err = nil })
	clock.Advance(40 * time.Millisecond)
	s.Paint(emptySource, false)
	if r.callCount() != 3 || !s.Valid() {
		t.Errorf("no retry after the tick interval: calls %d, valid %v", r.callCount(), s.Valid())
	}
}

func TestSchedulerBackgroundPanicIsContained(t *testing.T) {
	s, r, h, _ := newTestScheduler(t, time.Millisecond)
	r.set(func(r *fakeRenderer) { r.panicOn = true })

	s.Paint(emptySource, false)
	waitPass(t, s)

	var pe *PassError
	if err := h.lastErr(); !errors.As(err, &pe) || pe.Panic == nil || len(pe.Stack) == 0 {
		t.Fatalf("host error = %v, want PassError with panic", err)
	}
	if s.Valid() || s.State().Pending {
		t.Errorf("state after panic: %+v", s.State())
	}
}

func TestSchedulerTickRepaintsWhilePending(t *testing.T) {
	SetLogOutput(nil)
	clock := newFakeClock()
	block := make(chan struct{})
	r := &fakeRenderer{clock: clock, block: block}
	h := newRecordingHost()
	s := NewScheduler(r, h, SchedulerConfig{TickInterval: time.Millisecond})
	s.SetClock(clock.Now)
	defer s.Close()
	defer close(block)

	s.Paint(emptySource, false)
	select {
	case <-h.repaintsCh:
	case <-time.After(5 * time.Second):
		t.Fatal("no repaint from the tick while a pass was pending")
	}
}

func TestSchedulerStatsCollectFullPasses(t *testing.T) {
	s, r, _, _ := newTestScheduler(t, 20*time.Millisecond)
	s.Paint(emptySource, false)
	waitPass(t, s)
	r.set(func(r *fakeRenderer) { r.cost = 10 * time.Millisecond })
	s.Invalidate()
	s.Paint(emptySource, false)

	st := s.Stats()
	if st.Count != 2 || st.Max != 20*time.Millisecond || st.Mean != 15*time.Millisecond {
		t.Errorf("Stats = %+v", st)
	}
}
