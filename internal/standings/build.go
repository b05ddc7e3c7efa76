package standings

import (
	"github.com/banshee-data/overlay.report/internal/session"
	"github.com/banshee-data/overlay.report/internal/telemetry"
)

// CalculateDelta returns the gap to the leader in seconds, or nil when it
// cannot be shown.
//
// In a race the simulator's own gap-to-leader channel is used as is. In
// other sessions the gap is the difference between the car's fastest lap
// and the leader's; a missing or zero leader time, and any gap that is not
// positive, yield nil.
func CalculateDelta(carIdx int, carFastest float64, f2 telemetry.Floats, sessionType session.SessionType, leaderFastest *float64) *float64 {
	if sessionType == session.Race {
		v, ok := f2.At(carIdx)
		if !ok {
			return nil
		}
		return &v
	}

	if leaderFastest == nil || *leaderFastest == 0 {
		return nil
	}
	delta := carFastest - *leaderFastest
	if delta <= 0 {
		return nil
	}
	return &delta
}

// Input is everything Build needs for one tick.
type Input struct {
	Drivers     []session.Driver
	PlayerIdx   int
	Results     []session.Result
	FastestLap  []session.FastestLap
	SessionType session.SessionType
	Telemetry   *telemetry.Snapshot // may be nil
}

// InputFromSession assembles an Input from a session document and the
// active session. Results fall back to the standalone qualifying results
// when the active session has none.
func InputFromSession(s *session.Session, current *session.SessionInfo, snap *telemetry.Snapshot) Input {
	in := Input{Telemetry: snap}
	if s != nil {
		in.Drivers = s.DriverInfo.Drivers
		in.PlayerIdx = s.PlayerIdx()
	}
	if current != nil {
		in.Results = current.ResultsPositions
		in.FastestLap = current.ResultsFastestLap
		in.SessionType = current.SessionType
	}
	if len(in.Results) == 0 {
		in.Results = s.QualifyingResults()
	}
	return in
}

// Build produces one Standing per result that has a roster driver, in
// results order. Results without a driver are dropped.
func Build(in Input) []Standing {
	snap := in.Telemetry
	if snap == nil {
		snap = &telemetry.Snapshot{}
	}

	fastestIdx := -1
	if len(in.FastestLap) > 0 {
		fastestIdx = in.FastestLap[0].CarIdx
	}
	var leaderFastest *float64
	for _, r := range in.Results {
		if r.CarIdx == fastestIdx {
			t := r.FastestTime
			leaderFastest = &t
			break
		}
	}

	drivers := make(map[int]session.Driver, len(in.Drivers))
	for _, d := range in.Drivers {
		if _, dup := drivers[d.CarIdx]; !dup {
			drivers[d.CarIdx] = d
		}
	}

	playerLap, playerLapKnown := snap.CarIdxLap.At(in.PlayerIdx)

	out := make([]Standing, 0, len(in.Results))
	for _, r := range in.Results {
		d, ok := drivers[r.CarIdx]
		if !ok {
			continue
		}

		onPitRoad, _ := snap.CarIdxOnPitRoad.At(r.CarIdx)
		surface, ok := snap.CarIdxTrackSurface.At(r.CarIdx)
		if !ok {
			surface = telemetry.NotInWorld
		}

		st := Standing{
			CarIdx:        r.CarIdx,
			Position:      r.Position,
			ClassPosition: r.ClassPosition + 1,
			Delta:         CalculateDelta(r.CarIdx, r.FastestTime, snap.CarIdxF2Time, in.SessionType, leaderFastest),
			IsPlayer:      r.CarIdx == in.PlayerIdx,
			Driver: DriverIdentity{
				Name:    d.UserName,
				CarNum:  d.CarNumber,
				License: d.LicString,
				Rating:  d.IRating,
			},
			FastestTime:    r.FastestTime,
			HasFastestTime: r.CarIdx == fastestIdx,
			LastTime:       r.LastTime,
			OnPitRoad:      onPitRoad,
			OnTrack:        surface > telemetry.NotInWorld,
			CarClass: CarClass{
				ID:            d.CarClassID,
				Color:         d.CarClassColor,
				Name:          d.CarClassShortName,
				RelativeSpeed: d.CarClassRelSpeed,
				EstLapTime:    d.CarClassEstLapTime,
			},
			RadioActive: snap.RadioTransmitCarIdx.Contains(r.CarIdx),
		}

		if lap, ok := snap.CarIdxLap.At(r.CarIdx); ok {
			st.Lap = &lap
			if in.SessionType == session.Race && playerLapKnown {
				st.LappedState = lappedState(lap, playerLap)
			}
		}

		out = append(out, st)
	}
	return out
}

func lappedState(lap, playerLap int) LappedState {
	switch {
	case lap > playerLap:
		return LappedAhead
	case lap < playerLap:
		return LappedBehind
	default:
		return LappedSame
	}
}
