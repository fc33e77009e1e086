package sunburst

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameStats summarises recent Full pass costs.
type FrameStats struct {
	Count int
	Mean  time.Duration
	P95   time.Duration
	Max   time.Duration
}

// costWindow is a fixed-size ring of pass costs in milliseconds.
type costWindow struct {
	samples []float64
	next    int
	full    bool
}

func newCostWindow(size int) *costWindow {
	if size < 1 {
		size = 1
	}
	return &costWindow{samples: make([]float64, 0, size)}
}

func (w *costWindow) add(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if !w.full {
		w.samples = append(w.samples, ms)
		if len(w.samples) == cap(w.samples) {
			w.full = true
		}
		return
	}
	w.samples[w.next] = ms
	w.next = (w.next + 1) % len(w.samples)
}

func (w *costWindow) stats() FrameStats {
	if len(w.samples) == 0 {
		return FrameStats{}
	}
	sorted := slices.Clone(w.samples)
	slices.Sort(sorted)
	ms := func(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }
	return FrameStats{
		Count: len(sorted),
		Mean:  ms(stat.Mean(sorted, nil)),
		P95:   ms(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		Max:   ms(floats.Max(sorted)),
	}
}
