// Package standings derives the per-driver standings table from a session
// snapshot and a telemetry tick, groups it by car class and selects the
// rows worth displaying.
package standings

// LappedState relates a car's lap count to the viewer's in a race.
type LappedState string

const (
	LappedAhead  LappedState = "ahead"
	LappedBehind LappedState = "behind"
	LappedSame   LappedState = "same"
)

// DriverIdentity is the roster data shown next to a standing.
type DriverIdentity struct {
	Name    string `json:"name"`
	CarNum  string `json:"carNum"`
	License string `json:"license"`
	Rating  int    `json:"rating"`
}

// CarClass describes the car class a driver competes in.
type CarClass struct {
	ID            int     `json:"id"`
	Color         int     `json:"color"`
	Name          string  `json:"name"`
	RelativeSpeed float64 `json:"relativeSpeed"`
	EstLapTime    float64 `json:"estLapTime"`
}

// Standing is one row of the standings table. It is rebuilt on every tick
// and must be treated as immutable by consumers. Pointer fields are nil
// when the value is unknown.
type Standing struct {
	CarIdx         int            `json:"carIdx"`
	Position       int            `json:"position"`
	ClassPosition  int            `json:"classPosition"` // 1-based
	Lap            *int           `json:"lap,omitempty"`
	LappedState    LappedState    `json:"lappedState,omitempty"`
	Delta          *float64       `json:"delta,omitempty"` // seconds to the leader
	IsPlayer       bool           `json:"isPlayer"`
	Driver         DriverIdentity `json:"driver"`
	FastestTime    float64        `json:"fastestTime"`
	HasFastestTime bool           `json:"hasFastestTime"`
	LastTime       float64        `json:"lastTime"`
	OnPitRoad      bool           `json:"onPitRoad"`
	OnTrack        bool           `json:"onTrack"`
	CarClass       CarClass       `json:"carClass"`
	RadioActive    bool           `json:"radioActive"`
	RatingChange   *float64       `json:"ratingChange,omitempty"`
}
