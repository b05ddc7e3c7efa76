package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Snapshot is one telemetry tick. Indexed channels may be shorter than the
// roster; values for disconnected cars are whatever the simulator left there.
type Snapshot struct {
	SessionTime       *float64 // simulated session clock (seconds)
	SessionNum        *int     // index into the session list of the active session
	SessionTimeRemain *float64
	SessionTimeTotal  *float64
	RaceLaps          *int // laps completed by the race leader

	PlayerCarTeamIncidentCount *int

	CarIdxLapDistPct    Floats // 0..1 progress around the current lap
	CarIdxLap           Ints
	CarIdxPosition      Ints
	CarIdxClassPosition Ints
	CarIdxF2Time        Floats // seconds behind the race leader
	CarIdxEstTime       Floats // estimated time to reach the current track position
	CarIdxOnPitRoad     Bools
	CarIdxTrackSurface  Ints
	CarIdxLastLapTime   Floats
	CarIdxBestLapTime   Floats
	RadioTransmitCarIdx Ints // car indexes currently transmitting
}

// SessionTimeOrZero returns the simulated clock, or 0 when the channel is
// absent.
func (s *Snapshot) SessionTimeOrZero() float64 {
	if s == nil || s.SessionTime == nil {
		return 0
	}
	return *s.SessionTime
}

// rawVar mirrors the SDK dump layout where every variable is an object with
// a "value" array (scalars are one-element arrays).
type rawVar struct {
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes the SDK dump format:
//
//	{"CarIdxLapDistPct": {"value": [0.12, null]}, "SessionTime": {"value": [42.1]}}
//
// A null entry is a slot with no value: NaN in Floats, UnknownInt in Ints.
// A null scalar leaves the field nil. Unknown variables are ignored.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]rawVar
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse telemetry tick: %w", err)
	}

	var out Snapshot
	floatScalars := map[string]**float64{
		"SessionTime":       &out.SessionTime,
		"SessionTimeRemain": &out.SessionTimeRemain,
		"SessionTimeTotal":  &out.SessionTimeTotal,
	}
	intScalars := map[string]**int{
		"SessionNum":                 &out.SessionNum,
		"RaceLaps":                   &out.RaceLaps,
		"PlayerCarTeamIncidentCount": &out.PlayerCarTeamIncidentCount,
	}
	floats := map[string]*Floats{
		"CarIdxLapDistPct":  &out.CarIdxLapDistPct,
		"CarIdxF2Time":      &out.CarIdxF2Time,
		"CarIdxEstTime":     &out.CarIdxEstTime,
		"CarIdxLastLapTime": &out.CarIdxLastLapTime,
		"CarIdxBestLapTime": &out.CarIdxBestLapTime,
	}
	ints := map[string]*Ints{
		"CarIdxLap":           &out.CarIdxLap,
		"CarIdxPosition":      &out.CarIdxPosition,
		"CarIdxClassPosition": &out.CarIdxClassPosition,
		"CarIdxTrackSurface":  &out.CarIdxTrackSurface,
		"RadioTransmitCarIdx": &out.RadioTransmitCarIdx,
	}

	for name, v := range raw {
		if len(v.Value) == 0 {
			continue
		}
		if name == "CarIdxOnPitRoad" {
			var vals []bool
			if err := json.Unmarshal(v.Value, &vals); err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			out.CarIdxOnPitRoad = vals
			continue
		}

		dstFloat, isFloat := floats[name]
		dstInt, isInt := ints[name]
		dstFloatScalar, isFloatScalar := floatScalars[name]
		dstIntScalar, isIntScalar := intScalars[name]
		if !isFloat && !isInt && !isFloatScalar && !isIntScalar {
			continue
		}

		vals, err := decodeValues(name, v.Value)
		if err != nil {
			return err
		}
		switch {
		case isFloat:
			conv := make(Floats, len(vals))
			for i, p := range vals {
				if p == nil {
					conv[i] = math.NaN()
				} else {
					conv[i] = *p
				}
			}
			*dstFloat = conv
		case isInt:
			conv := make(Ints, len(vals))
			for i, p := range vals {
				if p == nil {
					conv[i] = UnknownInt
				} else {
					conv[i] = int(*p)
				}
			}
			*dstInt = conv
		case isFloatScalar:
			if len(vals) > 0 && vals[0] != nil {
				f := *vals[0]
				*dstFloatScalar = &f
			}
		case isIntScalar:
			if len(vals) > 0 && vals[0] != nil {
				n := int(*vals[0])
				*dstIntScalar = &n
			}
		}
	}

	*s = out
	return nil
}

// decodeValues reads a value array, keeping nulls as nil entries.
func decodeValues(name string, data json.RawMessage) ([]*float64, error) {
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return vals, nil
}

// Decode reads a single tick.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeAll reads a recorded dump: a JSON array of ticks, oldest first.
func DecodeAll(r io.Reader) ([]*Snapshot, error) {
	var ticks []*Snapshot
	if err := json.NewDecoder(r).Decode(&ticks); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry dump: %w", err)
	}
	return ticks, nil
}
