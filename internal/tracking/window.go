// Package tracking smooths noisy per-car telemetry into stable displayed
// values. SpeedTracker derives speeds from lap-distance deltas and
// PaceTracker derives lap pace from completed lap times. Both keep a
// bounded history per car index, gated by simulated session time.
//
// Trackers are not safe for concurrent use.
package tracking

import "gonum.org/v1/gonum/floats"

// Window is a bounded FIFO of recent samples. Pushing past capacity drops
// the oldest sample.
type Window struct {
	size    int
	samples []float64
}

// NewWindow returns an empty window holding at most size samples. Sizes
// below 1 are treated as 1.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size, samples: make([]float64, 0, size)}
}

// Push appends v, evicting the oldest sample when full.
func (w *Window) Push(v float64) {
	w.samples = append(w.samples, v)
	if len(w.samples) > w.size {
		w.samples = w.samples[1:]
	}
}

// Len is the number of samples held.
func (w *Window) Len() int { return len(w.samples) }

// Values returns a copy of the samples, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.samples))
	copy(out, w.samples)
	return out
}

// Mean is the arithmetic mean, or 0 when empty.
func (w *Window) Mean() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	return floats.Sum(w.samples) / float64(len(w.samples))
}
