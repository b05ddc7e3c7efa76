// Package telemetry models one tick of simulator telemetry: scalar channels
// plus car-index keyed sequences.
package telemetry

import "math"

// UnknownInt marks an Ints slot that holds no value.
const UnknownInt = math.MinInt

// Floats is a car-index keyed sequence of numbers. Index i holds the value
// for car i; anything past the end of the slice, and any NaN slot, is
// unknown.
type Floats []float64

// At returns the value for carIdx and whether it is known.
func (f Floats) At(carIdx int) (float64, bool) {
	if carIdx < 0 || carIdx >= len(f) || math.IsNaN(f[carIdx]) {
		return 0, false
	}
	return f[carIdx], true
}

// Ints is a car-index keyed sequence of integers (lap numbers, positions,
// track surface states). Slots holding UnknownInt are unknown.
type Ints []int

// At returns the value for carIdx and whether it is known.
func (s Ints) At(carIdx int) (int, bool) {
	if carIdx < 0 || carIdx >= len(s) || s[carIdx] == UnknownInt {
		return 0, false
	}
	return s[carIdx], true
}

// Contains reports whether v appears anywhere in the sequence. Used for
// channels that list car indexes rather than being keyed by them.
func (s Ints) Contains(v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Bools is a car-index keyed sequence of flags. A null slot in a recorded
// dump decodes as false.
type Bools []bool

// At returns the flag for carIdx and whether it is known.
func (b Bools) At(carIdx int) (bool, bool) {
	if carIdx < 0 || carIdx >= len(b) {
		return false, false
	}
	return b[carIdx], true
}

// Track surface values reported per car. Anything above NotInWorld means the
// car is physically present on the track or in the pits.
const (
	NotInWorld   = -1
	OffTrack     = 0
	InPitStall   = 1
	ApproachPits = 2
	OnTrack      = 3
)
