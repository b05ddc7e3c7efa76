// Package session models the simulator's session document: the roster, the
// list of sessions in the weekend and their results. The document arrives as
// the SDK's YAML session string or as a recorded JSON dump; both use the
// SDK's key names.
package session

import (
	"github.com/banshee-data/overlay.report/internal/units"
)

// SessionType is the simulator's name for a session kind.
type SessionType string

const (
	Race           SessionType = "Race"
	Practice       SessionType = "Practice"
	Qualify        SessionType = "Qualify"
	LoneQualify    SessionType = "Lone Qualify"
	OpenQualify    SessionType = "Open Qualify"
	OfflineTesting SessionType = "Offline Testing"
)

// Session is the full session document.
type Session struct {
	WeekendInfo        WeekendInfo         `yaml:"WeekendInfo" json:"WeekendInfo"`
	DriverInfo         DriverInfo          `yaml:"DriverInfo" json:"DriverInfo"`
	SessionInfo        SessionList         `yaml:"SessionInfo" json:"SessionInfo"`
	QualifyResultsInfo *QualifyResultsInfo `yaml:"QualifyResultsInfo,omitempty" json:"QualifyResultsInfo,omitempty"`
}

type WeekendInfo struct {
	TrackName        string         `yaml:"TrackName" json:"TrackName"`
	TrackDisplayName string         `yaml:"TrackDisplayName" json:"TrackDisplayName"`
	TrackLength      string         `yaml:"TrackLength" json:"TrackLength"` // e.g. "3.70 km"
	Official         int            `yaml:"Official" json:"Official"`
	WeekendOptions   WeekendOptions `yaml:"WeekendOptions" json:"WeekendOptions"`
}

type WeekendOptions struct {
	IncidentLimit LapCount `yaml:"IncidentLimit" json:"IncidentLimit"`
}

type DriverInfo struct {
	DriverCarIdx int      `yaml:"DriverCarIdx" json:"DriverCarIdx"`
	Drivers      []Driver `yaml:"Drivers" json:"Drivers"`
}

// Driver is one roster entry. CarIdx keys every telemetry channel.
type Driver struct {
	CarIdx             int     `yaml:"CarIdx" json:"CarIdx"`
	UserName           string  `yaml:"UserName" json:"UserName"`
	CarNumber          string  `yaml:"CarNumber" json:"CarNumber"`
	CarNumberRaw       int     `yaml:"CarNumberRaw" json:"CarNumberRaw"`
	CarClassID         int     `yaml:"CarClassID" json:"CarClassID"`
	CarClassColor      int     `yaml:"CarClassColor" json:"CarClassColor"`
	CarClassShortName  string  `yaml:"CarClassShortName" json:"CarClassShortName"`
	CarClassRelSpeed   float64 `yaml:"CarClassRelSpeed" json:"CarClassRelSpeed"`
	CarClassEstLapTime float64 `yaml:"CarClassEstLapTime" json:"CarClassEstLapTime"`
	LicString          string  `yaml:"LicString" json:"LicString"`
	IRating            int     `yaml:"IRating" json:"IRating"`
	IsSpectator        int     `yaml:"IsSpectator" json:"IsSpectator"`
	CarIsPaceCar       int     `yaml:"CarIsPaceCar" json:"CarIsPaceCar"`
}

type SessionList struct {
	Sessions []SessionInfo `yaml:"Sessions" json:"Sessions"`
}

// SessionInfo is one session of the weekend (practice, qualify, race...).
type SessionInfo struct {
	SessionNum        int          `yaml:"SessionNum" json:"SessionNum"`
	SessionType       SessionType  `yaml:"SessionType" json:"SessionType"`
	SessionLaps       LapCount     `yaml:"SessionLaps" json:"SessionLaps"`
	ResultsPositions  []Result     `yaml:"ResultsPositions" json:"ResultsPositions"`
	ResultsFastestLap []FastestLap `yaml:"ResultsFastestLap" json:"ResultsFastestLap"`
}

// Result is one row of a results table. ClassPosition is 0-based.
type Result struct {
	Position      int     `yaml:"Position" json:"Position"`
	ClassPosition int     `yaml:"ClassPosition" json:"ClassPosition"`
	CarIdx        int     `yaml:"CarIdx" json:"CarIdx"`
	Lap           int     `yaml:"Lap" json:"Lap"`
	FastestLap    int     `yaml:"FastestLap" json:"FastestLap"`
	FastestTime   float64 `yaml:"FastestTime" json:"FastestTime"`
	LastTime      float64 `yaml:"LastTime" json:"LastTime"`
	LapsComplete  int     `yaml:"LapsComplete" json:"LapsComplete"`
	Incidents     int     `yaml:"Incidents" json:"Incidents"`
}

type FastestLap struct {
	CarIdx      int     `yaml:"CarIdx" json:"CarIdx"`
	FastestLap  int     `yaml:"FastestLap" json:"FastestLap"`
	FastestTime float64 `yaml:"FastestTime" json:"FastestTime"`
}

type QualifyResultsInfo struct {
	Results []Result `yaml:"Results" json:"Results"`
}

// Current returns the session with the given number, or nil when the
// document does not list it.
func (s *Session) Current(sessionNum int) *SessionInfo {
	if s == nil {
		return nil
	}
	for i := range s.SessionInfo.Sessions {
		if s.SessionInfo.Sessions[i].SessionNum == sessionNum {
			return &s.SessionInfo.Sessions[i]
		}
	}
	return nil
}

// PlayerIdx is the car index of the viewer's own car, or -1 without a
// document.
func (s *Session) PlayerIdx() int {
	if s == nil {
		return -1
	}
	return s.DriverInfo.DriverCarIdx
}

// Driver looks up a roster entry by car index.
func (s *Session) Driver(carIdx int) (Driver, bool) {
	if s == nil {
		return Driver{}, false
	}
	for _, d := range s.DriverInfo.Drivers {
		if d.CarIdx == carIdx {
			return d, true
		}
	}
	return Driver{}, false
}

// Player returns the viewer's roster entry.
func (s *Session) Player() (Driver, bool) {
	if s == nil {
		return Driver{}, false
	}
	return s.Driver(s.DriverInfo.DriverCarIdx)
}

// QualifyingResults returns the standalone qualifying results, if any.
func (s *Session) QualifyingResults() []Result {
	if s == nil || s.QualifyResultsInfo == nil {
		return nil
	}
	return s.QualifyResultsInfo.Results
}

// IsOfficial reports whether the weekend counts towards ratings.
func (s *Session) IsOfficial() bool {
	return s != nil && s.WeekendInfo.Official == 1
}

// TrackLengthMeters parses WeekendInfo.TrackLength. It returns 0 when the
// value is missing or malformed.
func (s *Session) TrackLengthMeters() float64 {
	if s == nil {
		return 0
	}
	m, ok := units.ParseDistance(s.WeekendInfo.TrackLength)
	if !ok || m < 0 {
		return 0
	}
	return m
}

// ClassEstLapTimes returns each car's class estimated lap time indexed by
// car index, sized to the highest car index on the roster. Indexes with no
// driver hold 0.
func (s *Session) ClassEstLapTimes() []float64 {
	if s == nil {
		return nil
	}
	maxIdx := -1
	for _, d := range s.DriverInfo.Drivers {
		if d.CarIdx > maxIdx {
			maxIdx = d.CarIdx
		}
	}
	out := make([]float64, maxIdx+1)
	for _, d := range s.DriverInfo.Drivers {
		if d.CarIdx >= 0 {
			out[d.CarIdx] = d.CarClassEstLapTime
		}
	}
	return out
}
