package standings

import "sort"

// NoClass stands for an unknown viewer class. Every class is then treated
// as a non-viewer class when slicing.
const NoClass = -1

// ClassGroup is the standings of one car class, in results order.
type ClassGroup struct {
	ClassID   int        `json:"classId"`
	Standings []Standing `json:"standings"`
}

// GroupByClass partitions standings by class id. Groups are ordered by
// descending class relative speed; classes with equal speed keep the order
// in which they first appear.
func GroupByClass(standings []Standing) []ClassGroup {
	var groups []ClassGroup
	index := make(map[int]int)
	for _, s := range standings {
		i, ok := index[s.CarClass.ID]
		if !ok {
			i = len(groups)
			index[s.CarClass.ID] = i
			groups = append(groups, ClassGroup{ClassID: s.CarClass.ID})
		}
		groups[i].Standings = append(groups[i].Standings, s)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Standings[0].CarClass.RelativeSpeed > groups[b].Standings[0].CarClass.RelativeSpeed
	})
	return groups
}

// Flatten concatenates the groups back into a single list.
func Flatten(groups []ClassGroup) []Standing {
	n := 0
	for _, g := range groups {
		n += len(g.Standings)
	}
	out := make([]Standing, 0, n)
	for _, g := range groups {
		out = append(out, g.Standings...)
	}
	return out
}

// PlayerClassID returns the class of the viewer's standing, or NoClass.
func PlayerClassID(standings []Standing) int {
	for _, s := range standings {
		if s.IsPlayer {
			return s.CarClass.ID
		}
	}
	return NoClass
}
