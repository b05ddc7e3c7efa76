// Package rating estimates the rating change each entrant of a race would
// receive for a given finishing order. The model is zero-sum: gains among
// starters are balanced by losses, and non-starters absorb the residual in
// proportion to their expected score.
package rating

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnassignedEntrant is returned when an entrant receives neither a
// starter nor a non-starter change.
var ErrUnassignedEntrant = errors.New("entrant is neither starter nor non-starter")

// RaceResult is one entrant. FinishRank is 1-based.
type RaceResult[D any] struct {
	Driver      D
	FinishRank  int
	StartRating int
	Started     bool
}

// CalculationResult is the estimated outcome for one entrant.
type CalculationResult[D any] struct {
	RaceResult   RaceResult[D]
	RatingChange float64
	NewRating    int
}

// ratingBase is the logistic scale of the model, 1600/ln(2).
var ratingBase = 1600 / math.Ln2

// chance is the probability that a driver rated a beats one rated b.
func chance(a, b, factor float64) float64 {
	expA := exp(-a / factor)
	expB := exp(-b / factor)
	return ((1 - expA) * expB) / ((1-expB)*expA + (1-expA)*expB)
}

// Estimate computes the rating change and new rating for every entrant, in
// input order. Sums are accumulated in input order so results are
// reproducible for a fixed input.
func Estimate[D any](results []RaceResult[D]) ([]CalculationResult[D], error) {
	numRegistrations := len(results)
	if numRegistrations == 0 {
		return []CalculationResult[D]{}, nil
	}

	numStarters := 0
	for _, r := range results {
		if r.Started {
			numStarters++
		}
	}
	numNonStarters := numRegistrations - numStarters

	expectedScores := make([]float64, numRegistrations)
	for i, a := range results {
		sum := 0.0
		for _, b := range results {
			sum += chance(float64(a.StartRating), float64(b.StartRating), ratingBase)
		}
		expectedScores[i] = sum - 0.5
	}

	changes := make([]*float64, numRegistrations)

	x := float64(numRegistrations) - float64(numNonStarters)/2
	sumStarters := 0.0
	for i, r := range results {
		if !r.Started {
			continue
		}
		fudge := (x/2 - float64(r.FinishRank)) / 100
		change := ((float64(numRegistrations) - float64(r.FinishRank) - expectedScores[i] - fudge) * 200) / float64(numStarters)
		sumStarters += change
		changes[i] = &change
	}

	sumNonStarters := 0.0
	for i, r := range results {
		if !r.Started {
			sumNonStarters += expectedScores[i]
		}
	}
	avgNonStarters := 0.0
	if numNonStarters > 0 {
		avgNonStarters = sumNonStarters / float64(numNonStarters)
	}
	for i, r := range results {
		if r.Started {
			continue
		}
		change := 0.0
		if avgNonStarters != 0 {
			change = (-sumStarters / float64(numNonStarters)) * (expectedScores[i] / avgNonStarters)
		}
		changes[i] = &change
	}

	out := make([]CalculationResult[D], numRegistrations)
	for i, r := range results {
		if changes[i] == nil {
			return nil, fmt.Errorf("entrant %d: %w", i, ErrUnassignedEntrant)
		}
		change := *changes[i]
		out[i] = CalculationResult[D]{
			RaceResult:   r,
			RatingChange: change,
			NewRating:    newRating(r.StartRating, change),
		}
	}
	return out, nil
}

// newRating rounds half up, never going below zero.
func newRating(start int, change float64) int {
	n := int(math.Floor(float64(start) + change + 0.5))
	if n < 0 {
		return 0
	}
	return n
}
