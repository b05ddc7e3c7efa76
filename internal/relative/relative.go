// Package relative computes the time gap between the viewer and the cars
// around them on track.
package relative

import (
	"sort"

	"github.com/banshee-data/overlay.report/internal/standings"
	"github.com/banshee-data/overlay.report/internal/telemetry"
)

// Entry is a standing with its gap to the viewer. Delta shadows the
// standing's gap-to-leader.
type Entry struct {
	standings.Standing
	Delta       float64 `json:"delta"`       // seconds, positive = ahead of the viewer
	RelativePct float64 `json:"relativePct"` // lap fraction, within [-0.5, 0.5]
}

// Input is everything Compute needs for one tick.
type Input struct {
	Standings  []standings.Standing
	LapDistPct telemetry.Floats
	EstTime    telemetry.Floats
	PlayerIdx  int
	Buffer     int // cars kept either side of the viewer
}

// Compute returns the cars around the viewer ordered by gap, cars ahead
// first. Only cars within Buffer places of the viewer are kept, and of
// those only cars on track; the viewer is always kept. Cars with unknown
// lap distance or estimated time are skipped. The result is empty when the
// viewer's own position is unknown.
func Compute(in Input) []Entry {
	viewerPct, ok := in.LapDistPct.At(in.PlayerIdx)
	if !ok {
		return []Entry{}
	}
	viewerEst, ok := in.EstTime.At(in.PlayerIdx)
	if !ok {
		return []Entry{}
	}

	entries := make([]Entry, 0, len(in.Standings))
	for _, s := range in.Standings {
		pct, ok := in.LapDistPct.At(s.CarIdx)
		if !ok {
			continue
		}
		est, ok := in.EstTime.At(s.CarIdx)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Standing:    s,
			Delta:       gap(pct, viewerPct, est, viewerEst, s.CarClass.EstLapTime),
			RelativePct: wrapPct(pct - viewerPct),
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Delta > entries[b].Delta
	})

	viewer := -1
	for i, e := range entries {
		if e.CarIdx == in.PlayerIdx {
			viewer = i
			break
		}
	}
	if viewer < 0 {
		return []Entry{}
	}

	start := max(viewer-in.Buffer, 0)
	end := min(viewer+in.Buffer+1, len(entries))

	out := make([]Entry, 0, end-start)
	for _, e := range entries[start:end] {
		if e.OnTrack || e.CarIdx == in.PlayerIdx {
			out = append(out, e)
		}
	}
	return out
}

// gap is the car's time gap to the viewer. When the two cars are closer
// across the start/finish line than along the raw lap fraction, the raw
// estimated-time difference is off by one lap and is corrected by the car's
// class lap time.
func gap(pct, viewerPct, est, viewerEst, estLapTime float64) float64 {
	delta := est - viewerEst
	if crossesStartFinish(pct, viewerPct) {
		if viewerEst > est {
			return delta + estLapTime
		}
		return delta - estLapTime
	}
	return delta
}

func crossesStartFinish(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > 0.5
}

// wrapPct folds a lap-fraction difference into [-0.5, 0.5].
func wrapPct(d float64) float64 {
	for d > 0.5 {
		d -= 1
	}
	for d < -0.5 {
		d += 1
	}
	return d
}
