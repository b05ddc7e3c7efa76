// Package engine wires the analytics packages together behind a push-driven
// API: the host pushes session documents and telemetry ticks as they
// arrive and reads derived views whenever it renders. The most recently
// pushed value of each stream wins.
//
// An Engine is not safe for concurrent use; drive it from one goroutine.
package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/overlay.report/internal/config"
	"github.com/banshee-data/overlay.report/internal/monitoring"
	"github.com/banshee-data/overlay.report/internal/rating"
	"github.com/banshee-data/overlay.report/internal/relative"
	"github.com/banshee-data/overlay.report/internal/session"
	"github.com/banshee-data/overlay.report/internal/standings"
	"github.com/banshee-data/overlay.report/internal/telemetry"
	"github.com/banshee-data/overlay.report/internal/tracking"
	"github.com/banshee-data/overlay.report/internal/units"
)

type Engine struct {
	sliceOpts      standings.SliceOptions
	relativeBuffer int

	speeds *tracking.SpeedTracker
	paces  *tracking.PaceTracker

	session   *session.Session
	telemetry *telemetry.Snapshot
	ticks     int

	runID uuid.UUID
}

// New builds an Engine from the tuning config. A nil config uses defaults.
func New(cfg *config.TuningConfig) *Engine {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	e := &Engine{
		sliceOpts:      standings.SliceOptionsFromTuning(cfg),
		relativeBuffer: cfg.GetRelativeBuffer(),
		speeds:         tracking.NewSpeedTracker(tracking.SpeedConfigFromTuning(cfg)),
		paces:          tracking.NewPaceTracker(tracking.PaceConfigFromTuning(cfg)),
		runID:          uuid.New(),
	}
	monitoring.Opsf("run %s: engine started (slice %+v, relative buffer %d)", e.runID, e.sliceOpts, e.relativeBuffer)
	return e
}

// RunID identifies the current run. It changes on every Reset.
func (e *Engine) RunID() string { return e.runID.String() }

// PushSession replaces the session document.
func (e *Engine) PushSession(s *session.Session) {
	if s == nil {
		return
	}
	if e.session == nil || e.session.WeekendInfo.TrackName != s.WeekendInfo.TrackName {
		monitoring.Opsf("run %s: session for %q (%.0f m, %d drivers)",
			e.runID, s.WeekendInfo.TrackName, s.TrackLengthMeters(), len(s.DriverInfo.Drivers))
	}
	e.session = s
}

// PushTelemetry records a tick and feeds the speed and pace trackers.
func (e *Engine) PushTelemetry(snap *telemetry.Snapshot) {
	if snap == nil {
		return
	}
	prev := e.currentSessionNum()
	e.telemetry = snap
	e.ticks++
	if now := e.currentSessionNum(); prev != nil && now != nil && *prev != *now {
		monitoring.Opsf("run %s: active session changed %d -> %d", e.runID, *prev, *now)
	}

	e.speeds.Update(snap, e.session.TrackLengthMeters())
	e.paces.Update(snap)
	monitoring.Tracef("run %s: tick %d t=%.3f cars=%d", e.runID, e.ticks, snap.SessionTimeOrZero(), len(snap.CarIdxLapDistPct))
}

func (e *Engine) currentSessionNum() *int {
	if e.telemetry == nil {
		return nil
	}
	return e.telemetry.SessionNum
}

// CurrentSession returns the active session, or nil when the telemetry has
// not named one or the document does not list it.
func (e *Engine) CurrentSession() *session.SessionInfo {
	num := e.currentSessionNum()
	if num == nil {
		return nil
	}
	return e.session.Current(*num)
}

// Standings is the flat standings table for the latest tick.
func (e *Engine) Standings() []standings.Standing {
	if e.session == nil {
		return []standings.Standing{}
	}
	return standings.Build(standings.InputFromSession(e.session, e.CurrentSession(), e.telemetry))
}

// ClassStandings groups the standings by class and slices each class for
// display. In official races every row carries its estimated rating change.
func (e *Engine) ClassStandings() ([]standings.ClassGroup, error) {
	rows := e.Standings()
	groups := standings.GroupByClass(rows)

	if cur := e.CurrentSession(); cur != nil && cur.SessionType == session.Race && e.session.IsOfficial() {
		augmented, err := standings.AugmentWithRatings(groups)
		if err != nil {
			monitoring.Opsf("run %s: rating estimate failed: %v", e.runID, err)
			return nil, fmt.Errorf("failed to estimate rating changes: %w", err)
		}
		groups = augmented
	}

	sliced := standings.SliceRelevantDrivers(groups, standings.PlayerClassID(rows), e.sliceOpts)
	monitoring.Diagf("run %s: %d standings in %d classes", e.runID, len(rows), len(sliced))
	return sliced, nil
}

// ClassStats summarises every class on the roster.
func (e *Engine) ClassStats() []standings.ClassStats {
	if e.session == nil {
		return []standings.ClassStats{}
	}
	return standings.ComputeClassStats(e.session.DriverInfo.Drivers)
}

// Relatives is the relative view around the viewer for the latest tick.
func (e *Engine) Relatives() []relative.Entry {
	if e.session == nil || e.telemetry == nil {
		return []relative.Entry{}
	}
	return relative.Compute(relative.Input{
		Standings:  e.Standings(),
		LapDistPct: e.telemetry.CarIdxLapDistPct,
		EstTime:    e.telemetry.CarIdxEstTime,
		PlayerIdx:  e.session.PlayerIdx(),
		Buffer:     e.relativeBuffer,
	})
}

// CarSpeeds returns smoothed speeds in km/h indexed by car index.
func (e *Engine) CarSpeeds() []int { return e.speeds.Speeds() }

// CarSpeedsIn returns the smoothed speeds converted to the given unit (see
// units.ValidUnits).
func (e *Engine) CarSpeedsIn(unit string) ([]float64, error) {
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("unknown speed unit %q (want one of %v)", unit, units.ValidUnits)
	}
	kmh := e.speeds.Speeds()
	out := make([]float64, len(kmh))
	for i, v := range kmh {
		out[i] = units.ConvertSpeed(units.ConvertToMPS(float64(v), units.KMPH), unit)
	}
	return out, nil
}

// LapPaces returns smoothed lap paces in seconds indexed by car index.
func (e *Engine) LapPaces() []float64 { return e.paces.Paces() }

// AverageLapTimes returns each car's pace, or its class estimated lap time
// when no pace is known yet, or -1.
func (e *Engine) AverageLapTimes() []float64 {
	return e.paces.AverageLapTimes(e.session.ClassEstLapTimes())
}

// EstimateRatings predicts rating changes for the viewer's class as if the
// race finished in the current order. Without a viewer standing the whole
// field is rated as one class.
func (e *Engine) EstimateRatings() ([]rating.CalculationResult[standings.Standing], error) {
	rows := e.Standings()
	classID := standings.PlayerClassID(rows)

	var input []rating.RaceResult[standings.Standing]
	for _, s := range rows {
		if classID != standings.NoClass && s.CarClass.ID != classID {
			continue
		}
		input = append(input, rating.RaceResult[standings.Standing]{
			Driver:      s,
			FinishRank:  s.ClassPosition,
			StartRating: s.Driver.Rating,
			Started:     true,
		})
	}

	results, err := rating.Estimate(input)
	if err != nil {
		monitoring.Opsf("run %s: rating estimate failed: %v", e.runID, err)
		return nil, err
	}
	return results, nil
}

// Player returns the viewer's roster entry.
func (e *Engine) Player() (session.Driver, bool) {
	return e.session.Player()
}

// LapProgress is the race distance as seen from the active session.
type LapProgress struct {
	Current       int              // laps completed by the leader
	Total         session.LapCount // session length, possibly unlimited
	TimeRemaining float64          // seconds
	TimeTotal     float64          // seconds
}

// SessionLapCount reports the leader's lap, the scheduled laps and the
// session clock. It is zero until both a session and a tick are known.
func (e *Engine) SessionLapCount() LapProgress {
	cur := e.CurrentSession()
	if cur == nil || e.telemetry == nil {
		return LapProgress{}
	}
	p := LapProgress{Total: cur.SessionLaps}
	if e.telemetry.RaceLaps != nil {
		p.Current = *e.telemetry.RaceLaps
	}
	if e.telemetry.SessionTimeRemain != nil {
		p.TimeRemaining = *e.telemetry.SessionTimeRemain
	}
	if e.telemetry.SessionTimeTotal != nil {
		p.TimeTotal = *e.telemetry.SessionTimeTotal
	}
	return p
}

// Incidents is the viewer's incident count against the weekend limit.
type Incidents struct {
	Count int
	Limit session.LapCount
}

// PlayerIncidents returns the viewer's incident count. The telemetry count
// wins; without it the viewer's row in the active results is used.
func (e *Engine) PlayerIncidents() Incidents {
	if e.session == nil {
		return Incidents{}
	}
	inc := Incidents{Limit: e.session.WeekendInfo.WeekendOptions.IncidentLimit}
	if e.telemetry != nil && e.telemetry.PlayerCarTeamIncidentCount != nil {
		inc.Count = *e.telemetry.PlayerCarTeamIncidentCount
		return inc
	}
	if cur := e.CurrentSession(); cur != nil {
		playerIdx := e.session.PlayerIdx()
		for _, r := range cur.ResultsPositions {
			if r.CarIdx == playerIdx {
				inc.Count = r.Incidents
				break
			}
		}
	}
	return inc
}

// Reset drops all tracker history and starts a new run. The latest session
// and tick are kept.
func (e *Engine) Reset() {
	e.speeds.Reset()
	e.paces.Reset()
	old := e.runID
	e.runID = uuid.New()
	e.ticks = 0
	monitoring.Opsf("run %s: reset (previous run %s)", e.runID, old)
}
