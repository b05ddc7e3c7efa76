package relative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/overlay.report/internal/standings"
	"github.com/banshee-data/overlay.report/internal/telemetry"
)

const lapTime = 100.0

func standing(carIdx int, onTrack, isPlayer bool) standings.Standing {
	return standings.Standing{
		CarIdx:   carIdx,
		OnTrack:  onTrack,
		IsPlayer: isPlayer,
		CarClass: standings.CarClass{EstLapTime: lapTime},
	}
}

func carIdxs(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.CarIdx
	}
	return out
}

func TestComputeGaps(t *testing.T) {
	t.Parallel()

	// Viewer (car 0) is near the end of the lap.
	in := Input{
		Standings: []standings.Standing{
			standing(0, true, true),
			standing(1, true, false), // just across the line, ahead
			standing(2, true, false), // just behind on the same lap
			standing(3, true, false), // ahead on the same lap
		},
		LapDistPct: telemetry.Floats{0.90, 0.05, 0.85, 0.95},
		EstTime:    telemetry.Floats{90, 5, 85, 95},
		PlayerIdx:  0,
		Buffer:     3,
	}

	got := Compute(in)
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 3, 0, 2}, carIdxs(got), "cars ahead first")

	assert.InDelta(t, 15, got[0].Delta, 1e-9, "crossing corrected by one lap")
	assert.InDelta(t, 0.15, got[0].RelativePct, 1e-9)
	assert.InDelta(t, 5, got[1].Delta, 1e-9)
	assert.Zero(t, got[2].Delta)
	assert.Zero(t, got[2].RelativePct)
	assert.InDelta(t, -5, got[3].Delta, 1e-9)
	assert.InDelta(t, -0.05, got[3].RelativePct, 1e-9)
}

func TestComputeCrossingBehind(t *testing.T) {
	t.Parallel()

	// Viewer just crossed the line; car 1 is about to.
	got := Compute(Input{
		Standings:  []standings.Standing{standing(0, true, true), standing(1, true, false)},
		LapDistPct: telemetry.Floats{0.10, 0.95},
		EstTime:    telemetry.Floats{10, 95},
		PlayerIdx:  0,
		Buffer:     3,
	})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].CarIdx)
	assert.InDelta(t, -15, got[1].Delta, 1e-9)
	assert.InDelta(t, -0.15, got[1].RelativePct, 1e-9)
}

func TestComputeWindowAndFilter(t *testing.T) {
	t.Parallel()

	// Ten cars spread evenly 1s apart, viewer in the middle.
	var rows []standings.Standing
	pct := make(telemetry.Floats, 10)
	est := make(telemetry.Floats, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, standing(i, i != 6, i == 5))
		pct[i] = 0.30 + float64(i)*0.01
		est[i] = 30 + float64(i)
	}
	// Viewer off track in the pits still shows.
	rows[5].OnTrack = false

	got := Compute(Input{Standings: rows, LapDistPct: pct, EstTime: est, PlayerIdx: 5, Buffer: 2})
	// Window is cars 7,6,5,4,3; car 6 is off track.
	assert.Equal(t, []int{7, 5, 4, 3}, carIdxs(got))

	clamped := Compute(Input{Standings: rows, LapDistPct: pct, EstTime: est, PlayerIdx: 5, Buffer: 20})
	assert.Len(t, clamped, 9, "window clamps to the field, off-track car dropped")

	zero := Compute(Input{Standings: rows, LapDistPct: pct, EstTime: est, PlayerIdx: 5, Buffer: 0})
	assert.Equal(t, []int{5}, carIdxs(zero))
}

func TestComputeUnknownData(t *testing.T) {
	t.Parallel()

	rows := []standings.Standing{standing(0, true, true), standing(1, true, false), standing(2, true, false)}

	t.Run("unknown viewer", func(t *testing.T) {
		t.Parallel()
		got := Compute(Input{Standings: rows, LapDistPct: telemetry.Floats{0.5}, EstTime: telemetry.Floats{50}, PlayerIdx: 4, Buffer: 3})
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("viewer missing from standings", func(t *testing.T) {
		t.Parallel()
		got := Compute(Input{Standings: rows[1:], LapDistPct: telemetry.Floats{0.5, 0.6, 0.4}, EstTime: telemetry.Floats{50, 60, 40}, PlayerIdx: 0, Buffer: 3})
		assert.Empty(t, got)
	})

	t.Run("car with unknown values is skipped", func(t *testing.T) {
		t.Parallel()
		got := Compute(Input{Standings: rows, LapDistPct: telemetry.Floats{0.5, 0.6, 0.4}, EstTime: telemetry.Floats{50, 60}, PlayerIdx: 0, Buffer: 3})
		assert.Equal(t, []int{1, 0}, carIdxs(got))
	})
}

func TestWrapPct(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want float64 }{
		{0.2, 0.2},
		{-0.2, -0.2},
		{0.85, -0.15},
		{-0.85, 0.15},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrapPct(tt.in), 1e-9, "wrapPct(%v)", tt.in)
	}
}
