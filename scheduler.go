package sunburst

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"
)

// Host receives pass notifications for UI feedback such as a busy indicator.
// PassStarted and PassFinished are called on the owner thread. Repaint may
// be called from the tick goroutine while a background pass runs.
type Host interface {
	PassStarted(f Fidelity, background bool)
	PassFinished(f Fidelity, cost time.Duration, err error)
	Repaint()
}

// NopHost ignores all notifications.
type NopHost struct{}

func (NopHost) PassStarted(Fidelity, bool)                  {}
func (NopHost) PassFinished(Fidelity, time.Duration, error) {}
func (NopHost) Repaint()                                    {}

// FrameSource snapshots the current view for a pass of the given fidelity.
// It is called on the owner thread at dispatch time.
type FrameSource interface {
	Frame(f Fidelity) Frame
}

// FrameSourceFunc adapts a function to FrameSource.
type FrameSourceFunc func(f Fidelity) Frame

// Frame implements FrameSource.
func (fn FrameSourceFunc) Frame(f Fidelity) Frame { return fn(f) }

// PassError reports a render pass that failed or panicked. The scheduler
// recovers it at the pass boundary; it never reaches the owner thread as a
// panic.
type PassError struct {
	Fidelity Fidelity
	Err      error
	Panic    any
	Stack    []byte
}

func (e *PassError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s pass panicked: %v", e.Fidelity, e.Panic)
	}
	return fmt.Sprintf("%s pass: %v", e.Fidelity, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }

// SchedulerState is a snapshot of the scheduler's decision inputs.
type SchedulerState struct {
	Valid            bool
	Fidelity         Fidelity // fidelity of the front image
	LastFrameCost    time.Duration
	Pending          bool // a background pass is outstanding
	NeedsSimplify    bool
	NeedsProgressive bool
}

type passResult struct {
	img      image.Image
	fidelity Fidelity
	cost     time.Duration
	err      error
}

// Scheduler decides when and at what fidelity the view is redrawn.
//
// All methods except Progress must be called from a single owner thread.
// At most one Full pass runs in the background at a time; its result comes
// back through a completion channel and is applied by Paint, Poll or Wait.
type Scheduler struct {
	cfg      SchedulerConfig
	renderer Renderer
	host     Host
	now      func() time.Time

	valid            bool
	stale            bool // invalidated while a background pass was running
	pending          bool
	needsSimplify    bool
	needsProgressive bool
	lastCost         time.Duration
	fidelity         Fidelity
	retryAt          time.Time

	front    image.Image
	progress Progress
	costs    *costWindow

	slot     *semaphore.Weighted
	done     chan passResult
	stopTick chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler drawing through r. A nil host is
// replaced by NopHost; zero config fields take their defaults.
func NewScheduler(r Renderer, host Host, cfg SchedulerConfig) *Scheduler {
	def := DefaultConfig().Scheduler
	if cfg.SimplifyThreshold <= 0 {
		cfg.SimplifyThreshold = def.SimplifyThreshold
	}
	if cfg.ProgressiveThreshold <= 0 {
		cfg.ProgressiveThreshold = def.ProgressiveThreshold
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}
	if host == nil {
		host = NopHost{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:      cfg,
		renderer: r,
		host:     host,
		now:      time.Now,
		// Until a Full pass has been measured, assume it is slow enough to
		// belong in the background.
		needsProgressive: true,
		costs:            newCostWindow(cfg.StatsWindow),
		slot:             semaphore.NewWeighted(1),
		done:             make(chan passResult, 1),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// SetHost replaces the host.
func (s *Scheduler) SetHost(h Host) {
	if h == nil {
		h = NopHost{}
	}
	s.host = h
}

// SetClock replaces the clock used to measure pass cost. The function may
// be called from the background slot and must be safe for concurrent use.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Invalidate marks the front image out of date. If a background pass is
// running its result will be discarded and the pass re-run.
func (s *Scheduler) Invalidate() {
	s.valid = false
	s.retryAt = time.Time{}
	if s.pending {
		s.stale = true
	}
}

// Valid reports whether the front image reflects the current view.
func (s *Scheduler) Valid() bool { return s.valid }

// Front returns the most recently completed image, or nil.
func (s *Scheduler) Front() image.Image { return s.front }

// Progress reports the progress of the current or last pass. Safe to read
// from any goroutine.
func (s *Scheduler) Progress() *Progress { return &s.progress }

// Stats summarises recent Full pass costs.
func (s *Scheduler) Stats() FrameStats { return s.costs.stats() }

// State returns a snapshot of the scheduler state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState{
		Valid:            s.valid,
		Fidelity:         s.fidelity,
		LastFrameCost:    s.lastCost,
		Pending:          s.pending,
		NeedsSimplify:    s.needsSimplify,
		NeedsProgressive: s.needsProgressive,
	}
}

// Paint brings the front image up to date if needed and returns it.
//
// While the user drags and the last Full pass was slower than the simplify
// threshold, a Simplified pass runs synchronously. When idle, not
// simplifying, and the last Full pass was slower than the progressive
// threshold, a Full pass goes to the background slot and the previous image
// is returned until it completes. Otherwise a Full pass runs synchronously.
func (s *Scheduler) Paint(src FrameSource, adjusting bool) image.Image {
	s.Poll()
	if s.valid {
		return s.front
	}
	if !s.retryAt.IsZero() && s.now().Before(s.retryAt) {
		return s.front
	}
	// The slot is held from dispatch until the result is collected, so
	// no pass of any fidelity starts while one is outstanding.
	if !s.slot.TryAcquire(1) {
		return s.front
	}
	switch {
	case adjusting && s.needsSimplify:
		s.runSync(src, FidelitySimplified)
		s.slot.Release(1)
	case !adjusting && !s.needsSimplify && s.needsProgressive:
		s.dispatch(src)
	default:
		s.runSync(src, FidelityFull)
		s.slot.Release(1)
	}
	return s.front
}

// Poll applies a finished background pass, if any. It reports whether a
// pass was collected.
func (s *Scheduler) Poll() bool {
	if !s.pending {
		return false
	}
	select {
	case res := <-s.done:
		s.finish(res)
		return true
	default:
		return false
	}
}

// Wait blocks until the outstanding background pass completes and applies
// it. It returns immediately when nothing is pending.
func (s *Scheduler) Wait(ctx context.Context) error {
	if !s.pending {
		return nil
	}
	select {
	case res := <-s.done:
		s.finish(res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the scheduler context and waits for a running background
// pass to return. The scheduler must not be used afterwards.
func (s *Scheduler) Close() {
	s.cancel()
	if s.pending {
		res := <-s.done
		s.pending = false
		s.slot.Release(1)
		s.stopTicker()
		if res.err == nil && !s.stale {
			s.front = res.img
		}
	}
}

func (s *Scheduler) runSync(src FrameSource, fid Fidelity) {
	frame := src.Frame(fid)
	frame.Fidelity = fid
	s.host.PassStarted(fid, false)
	img, cost, err := s.render(frame)
	s.host.PassFinished(fid, cost, err)
	if err != nil {
		warnf("render failed: %v", err)
		s.valid = false
		s.retryAt = s.now().Add(s.cfg.TickInterval)
		return
	}
	s.front = img
	s.fidelity = fid
	s.valid = true
	s.retryAt = time.Time{}
	if fid == FidelityFull {
		s.measure(cost)
	}
	debugLogPass(passStats{fidelity: fid, cost: cost, nodes: s.progress.Done()})
}

// dispatch starts a background Full pass. The caller holds the slot; finish
// or Close releases it once the result is collected.
func (s *Scheduler) dispatch(src FrameSource) {
	frame := src.Frame(FidelityFull)
	frame.Fidelity = FidelityFull
	s.pending = true
	s.stale = false
	s.host.PassStarted(FidelityFull, true)

	stop := make(chan struct{})
	s.stopTick = stop
	go s.tick(stop)

	go func() {
		img, cost, err := s.render(frame)
		s.done <- passResult{img: img, fidelity: FidelityFull, cost: cost, err: err}
	}()
}

func (s *Scheduler) finish(res passResult) {
	s.pending = false
	s.slot.Release(1)
	s.stopTicker()
	s.host.PassFinished(res.fidelity, res.cost, res.err)

	if res.err != nil {
		warnf("background render failed: %v", res.err)
		s.valid = false
		s.stale = false
		s.retryAt = s.now().Add(s.cfg.TickInterval)
		s.host.Repaint()
		return
	}

	s.measure(res.cost)
	debugLogPass(passStats{fidelity: res.fidelity, background: true, cost: res.cost, nodes: s.progress.Done()})

	if s.stale {
		debugf("discarding stale background pass")
		s.stale = false
		s.valid = false
		s.host.Repaint()
		return
	}
	s.front = res.img
	s.fidelity = res.fidelity
	s.valid = true
	s.host.Repaint()
}

// measure recomputes the fidelity thresholds from a Full pass cost.
func (s *Scheduler) measure(cost time.Duration) {
	s.lastCost = cost
	s.needsSimplify = cost > s.cfg.SimplifyThreshold
	s.needsProgressive = cost > s.cfg.ProgressiveThreshold
	s.costs.add(cost)
}

// render runs one pass and converts failures and panics into a PassError.
func (s *Scheduler) render(f Frame) (img image.Image, cost time.Duration, err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = &PassError{Fidelity: f.Fidelity, Panic: r, Stack: debug.Stack()}
		}
		cost = s.now().Sub(start)
	}()
	img, err = s.renderer.Render(s.ctx, f, &s.progress)
	if err == nil && img == nil {
		err = errors.New("renderer returned no image")
	}
	if err != nil {
		var pe *PassError
		if !errors.As(err, &pe) {
			err = &PassError{Fidelity: f.Fidelity, Err: err}
		}
	}
	return img, cost, err
}

func (s *Scheduler) tick(stop <-chan struct{}) {
	t := time.NewTicker(s.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.host.Repaint()
		}
	}
}

func (s *Scheduler) stopTicker() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}
