package tracking

import (
	"math"

	"github.com/banshee-data/overlay.report/internal/config"
	"github.com/banshee-data/overlay.report/internal/telemetry"
	"github.com/banshee-data/overlay.report/internal/units"
)

// SpeedConfig tunes SpeedTracker.
type SpeedConfig struct {
	Window         int     // samples averaged per car
	UpdateInterval float64 // minimum simulated seconds between updates
}

func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{Window: 5, UpdateInterval: 0.1}
}

// SpeedConfigFromTuning builds a SpeedConfig from a loaded TuningConfig.
func SpeedConfigFromTuning(cfg *config.TuningConfig) SpeedConfig {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return SpeedConfig{
		Window:         cfg.GetSpeedWindow(),
		UpdateInterval: cfg.GetSpeedUpdateIntervalSecs(),
	}
}

type speedState struct {
	windows    map[int]*Window
	lastPct    telemetry.Floats // lap fractions at the last processed tick
	haveSample bool
	lastTime   float64 // simulated time of the last processed tick
	speeds     []int
}

func newSpeedState() *speedState {
	return &speedState{windows: make(map[int]*Window)}
}

// SpeedTracker estimates each car's speed in km/h from the change in its
// lap-distance fraction between processed ticks.
type SpeedTracker struct {
	cfg   SpeedConfig
	state *speedState
}

func NewSpeedTracker(cfg SpeedConfig) *SpeedTracker {
	return &SpeedTracker{cfg: cfg, state: newSpeedState()}
}

// Update processes one tick. trackLength is in meters. Ticks arriving less
// than UpdateInterval simulated seconds after the last processed tick are
// ignored. Without lap-distance data or a track length every speed reads 0
// and no history is recorded.
func (t *SpeedTracker) Update(snap *telemetry.Snapshot, trackLength float64) {
	st := t.state
	now := snap.SessionTimeOrZero()
	if now-st.lastTime < t.cfg.UpdateInterval {
		return
	}

	var pct telemetry.Floats
	if snap != nil {
		pct = snap.CarIdxLapDistPct
	}
	if len(pct) == 0 || trackLength <= 0 {
		st.speeds = make([]int, len(pct))
		return
	}

	if st.haveSample && now != st.lastTime {
		dt := now - st.lastTime
		for idx := range pct {
			cur, ok := pct.At(idx)
			if !ok {
				continue
			}
			prev, ok := st.lastPct.At(idx)
			if !ok {
				continue
			}
			frac := cur - prev
			if frac < 0 {
				// crossed the start/finish line
				frac += 1.0
			}
			speed := 0.0
			if dt > 0 {
				speed = units.ConvertSpeed(trackLength*frac/dt, units.KMPH)
			}
			t.window(idx).Push(speed)
		}
	}

	speeds := make([]int, len(pct))
	for idx := range speeds {
		if w, ok := st.windows[idx]; ok {
			speeds[idx] = int(math.Round(w.Mean()))
		}
	}

	st.lastPct = append(st.lastPct[:0], pct...)
	st.haveSample = true
	st.lastTime = now
	st.speeds = speeds
}

func (t *SpeedTracker) window(idx int) *Window {
	w, ok := t.state.windows[idx]
	if !ok {
		w = NewWindow(t.cfg.Window)
		t.state.windows[idx] = w
	}
	return w
}

// Speeds returns the smoothed speed of every car in km/h, indexed by car
// index, as of the last processed tick. Cars without history read 0.
func (t *SpeedTracker) Speeds() []int {
	out := make([]int, len(t.state.speeds))
	copy(out, t.state.speeds)
	return out
}

// history returns a copy of the raw speed samples held for a car.
func (t *SpeedTracker) history(carIdx int) []float64 {
	w, ok := t.state.windows[carIdx]
	if !ok {
		return nil
	}
	return w.Values()
}

// Reset discards all history.
func (t *SpeedTracker) Reset() {
	t.state = newSpeedState()
}
