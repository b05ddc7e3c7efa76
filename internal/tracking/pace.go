package tracking

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/overlay.report/internal/config"
	"github.com/banshee-data/overlay.report/internal/telemetry"
)

// PaceConfig tunes PaceTracker.
type PaceConfig struct {
	Window           int     // accepted lap times kept per car
	UpdateInterval   float64 // minimum simulated seconds between updates
	OutlierThreshold float64 // samples further than this many standard deviations from the mean are dropped
}

func DefaultPaceConfig() PaceConfig {
	return PaceConfig{Window: 5, UpdateInterval: 1.0, OutlierThreshold: 1.0}
}

// PaceConfigFromTuning builds a PaceConfig from a loaded TuningConfig.
func PaceConfigFromTuning(cfg *config.TuningConfig) PaceConfig {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return PaceConfig{
		Window:           cfg.GetPaceWindow(),
		UpdateInterval:   cfg.GetPaceUpdateIntervalSecs(),
		OutlierThreshold: cfg.GetPaceOutlierThreshold(),
	}
}

// minOutlierSamples is the smallest history the outlier filter runs on.
const minOutlierSamples = 3

type paceState struct {
	windows    map[int]*Window
	lastLap    telemetry.Floats // raw last-lap readings at the last processed tick
	haveSample bool
	lastTime   float64
	paces      []float64
}

func newPaceState() *paceState {
	return &paceState{windows: make(map[int]*Window)}
}

// PaceTracker estimates each car's lap pace from its recent completed laps.
// The last-lap channel holds the same value for a whole lap, so a reading
// only enters history when it changes.
type PaceTracker struct {
	cfg   PaceConfig
	state *paceState
}

func NewPaceTracker(cfg PaceConfig) *PaceTracker {
	return &PaceTracker{cfg: cfg, state: newPaceState()}
}

// Update processes one tick, ignoring ticks less than UpdateInterval
// simulated seconds after the last processed one.
func (t *PaceTracker) Update(snap *telemetry.Snapshot) {
	st := t.state
	now := snap.SessionTimeOrZero()
	if now-st.lastTime < t.cfg.UpdateInterval {
		return
	}

	var laps telemetry.Floats
	if snap != nil {
		laps = snap.CarIdxLastLapTime
	}
	if len(laps) == 0 {
		st.paces = nil
		return
	}

	if !st.haveSample || now != st.lastTime {
		for idx := range laps {
			lap, ok := laps.At(idx)
			if !ok || lap <= 0 {
				continue
			}
			prev, seen := st.lastLap.At(idx)
			if !st.haveSample || !seen || lap != prev {
				t.window(idx).Push(lap)
			}
		}
	}

	paces := make([]float64, len(laps))
	for idx := range paces {
		if w, ok := st.windows[idx]; ok {
			paces[idx] = t.pace(w.Values())
		}
	}

	st.lastLap = append(st.lastLap[:0], laps...)
	st.haveSample = true
	st.lastTime = now
	st.paces = paces
}

func (t *PaceTracker) window(idx int) *Window {
	w, ok := t.state.windows[idx]
	if !ok {
		w = NewWindow(t.cfg.Window)
		t.state.windows[idx] = w
	}
	return w
}

// pace is the median of the samples after outlier rejection.
func (t *PaceTracker) pace(samples []float64) float64 {
	switch len(samples) {
	case 0:
		return 0
	case 1:
		return samples[0]
	}
	return median(filterOutliers(samples, t.cfg.OutlierThreshold))
}

// filterOutliers keeps samples within threshold population standard
// deviations of the mean. Fewer than three samples are returned unchanged.
func filterOutliers(samples []float64, threshold float64) []float64 {
	if len(samples) < minOutlierSamples {
		return samples
	}
	mean, std := stat.PopMeanStdDev(samples, nil)
	limit := std * threshold
	kept := make([]float64, 0, len(samples))
	for _, v := range samples {
		if math.Abs(v-mean) <= limit {
			kept = append(kept, v)
		}
	}
	return kept
}

// median of an even-length set is the mean of the two central values.
func median(samples []float64) float64 {
	switch len(samples) {
	case 0:
		return 0
	case 1:
		return samples[0]
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Paces returns the smoothed lap pace of every car in seconds, indexed by
// car index, as of the last processed tick. Cars without history read 0.
func (t *PaceTracker) Paces() []float64 {
	out := make([]float64, len(t.state.paces))
	copy(out, t.state.paces)
	return out
}

// AverageLapTimes returns the pace of every car, falling back to the car's
// class estimated lap time when no pace is known, and -1 when neither is.
// The result covers every index of either input.
func (t *PaceTracker) AverageLapTimes(classEstLapTime telemetry.Floats) []float64 {
	paces := t.state.paces
	out := make([]float64, max(len(paces), len(classEstLapTime)))
	for idx := range out {
		if p, ok := telemetry.Floats(paces).At(idx); ok && p > 0 {
			out[idx] = p
			continue
		}
		if est, ok := classEstLapTime.At(idx); ok && est > 0 {
			out[idx] = est
			continue
		}
		out[idx] = -1
	}
	return out
}

// Reset discards all history.
func (t *PaceTracker) Reset() {
	t.state = newPaceState()
}
