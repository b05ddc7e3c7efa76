package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/overlay.report/internal/config"
	"github.com/banshee-data/overlay.report/internal/monitoring"
	"github.com/banshee-data/overlay.report/internal/session"
	"github.com/banshee-data/overlay.report/internal/standings"
	"github.com/banshee-data/overlay.report/internal/telemetry"
	"github.com/banshee-data/overlay.report/internal/units"
)

const sessionDoc = `
WeekendInfo:
 TrackName: testtrack
 TrackLength: 1.00 km
 Official: 1
 WeekendOptions:
  IncidentLimit: 17
DriverInfo:
 DriverCarIdx: 1
 Drivers:
 - CarIdx: 0
   UserName: Ana
   CarClassID: 10
   CarClassShortName: LMP
   CarClassRelSpeed: 90
   CarClassEstLapTime: 80
   IRating: 2500
 - CarIdx: 1
   UserName: Ben
   CarClassID: 20
   CarClassShortName: GT
   CarClassRelSpeed: 70
   CarClassEstLapTime: 100
   IRating: 1800
 - CarIdx: 2
   UserName: Cat
   CarClassID: 20
   CarClassShortName: GT
   CarClassRelSpeed: 70
   CarClassEstLapTime: 100
   IRating: 1600
SessionInfo:
 Sessions:
 - SessionNum: 0
   SessionType: Practice
   SessionLaps: unlimited
   ResultsPositions:
   - {Position: 1, ClassPosition: 0, CarIdx: 0, FastestTime: 80.5}
   - {Position: 2, ClassPosition: 0, CarIdx: 2, FastestTime: 99.0}
   - {Position: 3, ClassPosition: 1, CarIdx: 1, FastestTime: 99.8}
   ResultsFastestLap:
   - {CarIdx: 0, FastestLap: 2, FastestTime: 80.5}
 - SessionNum: 1
   SessionType: Race
   SessionLaps: 20
   ResultsPositions:
   - {Position: 1, ClassPosition: 0, CarIdx: 0}
   - {Position: 2, ClassPosition: 0, CarIdx: 1, Incidents: 4}
   - {Position: 3, ClassPosition: 1, CarIdx: 2}
   ResultsFastestLap:
   - {CarIdx: 0, FastestLap: 2, FastestTime: 80.1}
`

func loadSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.Decode(strings.NewReader(sessionDoc))
	require.NoError(t, err)
	return s
}

func snapshot(sessionNum int, now float64, pct ...float64) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		SessionTime:        &now,
		SessionNum:         &sessionNum,
		CarIdxLapDistPct:   pct,
		CarIdxEstTime:      telemetry.Floats{pct[0] * 80, pct[1] * 100, pct[2] * 100},
		CarIdxF2Time:       telemetry.Floats{0, 3.5, 7.25},
		CarIdxTrackSurface: telemetry.Ints{telemetry.OnTrack, telemetry.OnTrack, telemetry.OnTrack},
		CarIdxLastLapTime:  telemetry.Floats{80.2, 99.1, 0},
	}
}

func TestEngineRace(t *testing.T) {
	e := New(config.MustLoadDefaultConfig())
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(1, 1, 0.10, 0.50, 0.45))
	e.PushTelemetry(snapshot(1, 2, 0.20, 0.55, 0.48))

	rows := e.Standings()
	require.Len(t, rows, 3)
	assert.Equal(t, 3.5, *rows[1].Delta, "race delta comes from the gap channel")

	groups, err := e.ClassStandings()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 10, groups[0].ClassID, "faster class first")
	for _, g := range groups {
		for _, s := range g.Standings {
			assert.NotNil(t, s.RatingChange, "official race rows carry a rating change")
		}
	}

	assert.Equal(t, []int{360, 180, 108}, e.CarSpeeds())
	assert.Equal(t, []float64{80.2, 99.1, 0}, e.LapPaces())
	assert.Equal(t, []float64{80.2, 99.1, 100}, e.AverageLapTimes())

	results, err := e.EstimateRatings()
	require.NoError(t, err)
	require.Len(t, results, 2, "only the viewer's class")
	assert.Equal(t, "Ben", results[0].RaceResult.Driver.Driver.Name)
	assert.Positive(t, results[0].RatingChange)

	stats := e.ClassStats()
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[1].Total)
	assert.InDelta(t, 1700, stats[1].SOF, 1e-9)
}

func TestEngineRelatives(t *testing.T) {
	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(1, 1, 0.95, 0.05, 0.50))

	got := e.Relatives()
	require.Len(t, got, 3)
	idx := []int{got[0].CarIdx, got[1].CarIdx, got[2].CarIdx}
	assert.Equal(t, []int{2, 1, 0}, idx)
	// Car 0 is behind across the line: 76 - 5 - 80.
	assert.InDelta(t, -9.0, got[2].Delta, 1e-9)
	assert.InDelta(t, 45.0, got[0].Delta, 1e-9)
}

func TestEngineNonRaceSkipsRatings(t *testing.T) {
	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(0, 1, 0.1, 0.2, 0.3))

	groups, err := e.ClassStandings()
	require.NoError(t, err)
	for _, g := range groups {
		for _, s := range g.Standings {
			assert.Nil(t, s.RatingChange)
		}
	}

	rows := e.Standings()
	require.Len(t, rows, 3)
	assert.Nil(t, rows[0].Delta, "fastest car has no gap")
	assert.InDelta(t, 18.5, *rows[1].Delta, 1e-9)
}

func TestEngineWithoutSession(t *testing.T) {
	e := New(nil)
	e.PushTelemetry(snapshot(0, 1, 0.1, 0.2, 0.3))
	e.PushTelemetry(nil)

	assert.Empty(t, e.Standings())
	assert.Empty(t, e.Relatives())
	assert.Nil(t, e.CurrentSession())
	assert.Equal(t, []int{0, 0, 0}, e.CarSpeeds(), "no track length yet")

	groups, err := e.ClassStandings()
	require.NoError(t, err)
	assert.Empty(t, groups)

	results, err := e.EstimateRatings()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngineStandingsAreIdempotent(t *testing.T) {
	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(1, 1, 0.1, 0.2, 0.3))

	if diff := cmp.Diff(e.Standings(), e.Standings()); diff != "" {
		t.Errorf("Standings changed between reads (-first +second):\n%s", diff)
	}
}

func TestEngineReset(t *testing.T) {
	var ops bytes.Buffer
	monitoring.SetLogWriters(monitoring.LogWriters{Ops: &ops})
	defer monitoring.SetLogWriters(monitoring.LogWriters{})

	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(1, 1, 0.1, 0.2, 0.3))
	e.PushTelemetry(snapshot(1, 2, 0.2, 0.3, 0.4))
	require.NotEmpty(t, e.LapPaces())

	before := e.RunID()
	e.Reset()
	assert.NotEqual(t, before, e.RunID())
	assert.Empty(t, e.CarSpeeds())
	assert.Empty(t, e.LapPaces())
	assert.Len(t, e.Standings(), 3, "session survives a reset")
	assert.Contains(t, ops.String(), "reset (previous run "+before+")")
}

func TestEngineLogsSessionChange(t *testing.T) {
	var ops bytes.Buffer
	monitoring.SetLogWriters(monitoring.LogWriters{Ops: &ops})
	defer monitoring.SetLogWriters(monitoring.LogWriters{})

	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(0, 1, 0.1, 0.2, 0.3))
	e.PushTelemetry(snapshot(1, 2, 0.1, 0.2, 0.3))

	assert.Contains(t, ops.String(), `session for "testtrack" (1000 m, 3 drivers)`)
	assert.Contains(t, ops.String(), "active session changed 0 -> 1")
}

func TestEngineClassStatsCountWholeRoster(t *testing.T) {
	const doc = `
DriverInfo:
 DriverCarIdx: 0
 Drivers:
 - {CarIdx: 0, UserName: Ana, CarClassID: 10, CarClassShortName: LMP, CarClassRelSpeed: 90, IRating: 2500}
 - {CarIdx: 1, UserName: Ben, CarClassID: 10, CarClassShortName: LMP, CarClassRelSpeed: 90, IRating: 1500}
 - {CarIdx: 2, UserName: Cat, CarClassID: 20, CarClassShortName: GT, CarClassRelSpeed: 70, IRating: 1600}
SessionInfo:
 Sessions:
 - SessionNum: 0
   SessionType: Race
   ResultsPositions:
   - {Position: 1, ClassPosition: 0, CarIdx: 0}
`
	s, err := session.Decode(strings.NewReader(doc))
	require.NoError(t, err)

	e := New(nil)
	e.PushSession(s)
	e.PushTelemetry(snapshot(0, 1, 0.1, 0.2, 0.3))

	require.Len(t, e.Standings(), 1, "only one car has a results row")
	assert.Equal(t, []standings.ClassStats{
		{ClassID: 10, Name: "LMP", Total: 2, SOF: 2000},
		{ClassID: 20, Name: "GT", Total: 1, SOF: 1600},
	}, e.ClassStats())
}

func TestEngineCarSpeedsIn(t *testing.T) {
	e := New(nil)
	e.PushSession(loadSession(t))
	e.PushTelemetry(snapshot(1, 1, 0.10, 0.50, 0.45))
	e.PushTelemetry(snapshot(1, 2, 0.20, 0.55, 0.48))

	mps, err := e.CarSpeedsIn(units.MPS)
	require.NoError(t, err)
	require.Len(t, mps, 3)
	assert.InDelta(t, 100.0, mps[0], 1e-9)
	assert.InDelta(t, 30.0, mps[2], 1e-9)

	kph, err := e.CarSpeedsIn(units.KPH)
	require.NoError(t, err)
	assert.InDelta(t, 360.0, kph[0], 1e-9)

	_, err = e.CarSpeedsIn("knots")
	assert.ErrorContains(t, err, `unknown speed unit "knots"`)
}

func TestEngineSessionLapCountAndIncidents(t *testing.T) {
	e := New(nil)
	assert.Equal(t, LapProgress{}, e.SessionLapCount())
	assert.Equal(t, Incidents{}, e.PlayerIncidents())
	_, ok := e.Player()
	assert.False(t, ok)

	e.PushSession(loadSession(t))
	player, ok := e.Player()
	require.True(t, ok)
	assert.Equal(t, "Ben", player.UserName)

	snap := snapshot(1, 1, 0.1, 0.2, 0.3)
	laps, remain, total := 12, 600.0, 3600.0
	snap.RaceLaps = &laps
	snap.SessionTimeRemain = &remain
	snap.SessionTimeTotal = &total
	e.PushTelemetry(snap)

	assert.Equal(t, LapProgress{
		Current:       12,
		Total:         session.LapCount{Laps: 20},
		TimeRemaining: 600,
		TimeTotal:     3600,
	}, e.SessionLapCount())

	inc := e.PlayerIncidents()
	assert.Equal(t, 4, inc.Count, "falls back to the results row")
	assert.Equal(t, session.LapCount{Laps: 17}, inc.Limit)

	count := 6
	next := snapshot(1, 2, 0.1, 0.2, 0.3)
	next.PlayerCarTeamIncidentCount = &count
	e.PushTelemetry(next)
	assert.Equal(t, 6, e.PlayerIncidents().Count)

	e.PushTelemetry(snapshot(0, 3, 0.1, 0.2, 0.3))
	assert.True(t, e.SessionLapCount().Total.Unlimited)
}
