package standings

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/overlay.report/internal/rating"
	"github.com/banshee-data/overlay.report/internal/session"
)

// AugmentWithRatings estimates each driver's rating change as if the race
// finished in the current class order. Every driver with a class position
// is treated as a starter. The input groups are not modified.
func AugmentWithRatings(groups []ClassGroup) ([]ClassGroup, error) {
	out := make([]ClassGroup, len(groups))
	for gi, g := range groups {
		rows := make([]Standing, len(g.Standings))
		copy(rows, g.Standings)
		out[gi] = ClassGroup{ClassID: g.ClassID, Standings: rows}

		var input []rating.RaceResult[int]
		for _, s := range rows {
			if s.ClassPosition <= 0 {
				continue
			}
			input = append(input, rating.RaceResult[int]{
				Driver:      s.CarIdx,
				FinishRank:  s.ClassPosition,
				StartRating: s.Driver.Rating,
				Started:     true,
			})
		}
		if len(input) == 0 {
			continue
		}

		results, err := rating.Estimate(input)
		if err != nil {
			return nil, fmt.Errorf("class %d: %w", g.ClassID, err)
		}
		changes := make(map[int]float64, len(results))
		for _, r := range results {
			changes[r.RaceResult.Driver] = r.RatingChange
		}
		for i := range rows {
			if c, ok := changes[rows[i].CarIdx]; ok {
				rows[i].RatingChange = &c
			}
		}
	}
	return out, nil
}

// ClassStats summarises one class: how many cars it has and its strength
// of field (mean rating).
type ClassStats struct {
	ClassID int     `json:"classId"`
	Name    string  `json:"name"`
	Color   int     `json:"color"`
	Total   int     `json:"total"`
	SOF     float64 `json:"sof"`
}

// ComputeClassStats summarises every class on the roster, including drivers
// without a results row yet. Classes are ordered like GroupByClass: fastest
// first, ties in roster order.
func ComputeClassStats(drivers []session.Driver) []ClassStats {
	var out []ClassStats
	var speeds []float64
	var ratings [][]float64
	index := make(map[int]int)
	for _, d := range drivers {
		i, ok := index[d.CarClassID]
		if !ok {
			i = len(out)
			index[d.CarClassID] = i
			out = append(out, ClassStats{ClassID: d.CarClassID, Name: d.CarClassShortName, Color: d.CarClassColor})
			speeds = append(speeds, d.CarClassRelSpeed)
			ratings = append(ratings, nil)
		}
		out[i].Total++
		ratings[i] = append(ratings[i], float64(d.IRating))
	}
	for i := range out {
		out[i].SOF = stat.Mean(ratings[i], nil)
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return speeds[order[a]] > speeds[order[b]]
	})
	sorted := make([]ClassStats, len(out))
	for i, idx := range order {
		sorted[i] = out[idx]
	}
	return sorted
}
