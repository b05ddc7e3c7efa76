package standings

import "github.com/banshee-data/overlay.report/internal/config"

// SliceOptions controls which rows SliceRelevantDrivers keeps. The zero
// value keeps almost nothing; start from DefaultSliceOptions.
type SliceOptions struct {
	Buffer                int // rows kept either side of the viewer
	NumNonClassDrivers    int // rows kept for classes other than the viewer's
	MinPlayerClassDrivers int // minimum rows kept for the viewer's class
	NumTopDrivers         int // leading rows always kept in the viewer's class
}

func DefaultSliceOptions() SliceOptions {
	return SliceOptions{
		Buffer:                3,
		NumNonClassDrivers:    3,
		MinPlayerClassDrivers: 10,
		NumTopDrivers:         3,
	}
}

// SliceOptionsFromTuning maps the tuning config onto SliceOptions. A nil
// config yields the defaults.
func SliceOptionsFromTuning(cfg *config.TuningConfig) SliceOptions {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return SliceOptions{
		Buffer:                cfg.GetStandingsBuffer(),
		NumNonClassDrivers:    cfg.GetNumNonClassDrivers(),
		MinPlayerClassDrivers: cfg.GetMinPlayerClassDrivers(),
		NumTopDrivers:         cfg.GetNumTopDrivers(),
	}
}

// SliceRelevantDrivers trims every class group to the rows worth showing.
// Other classes keep their leading NumNonClassDrivers rows. The viewer's
// class keeps the top rows, a window around the viewer and enough following
// rows to reach MinPlayerClassDrivers. Kept rows stay in their original
// order. The input groups are not modified.
func SliceRelevantDrivers(groups []ClassGroup, playerClassID int, opts SliceOptions) []ClassGroup {
	out := make([]ClassGroup, len(groups))
	for i, g := range groups {
		var kept []Standing
		if playerClassID == NoClass || g.ClassID != playerClassID {
			kept = head(g.Standings, opts.NumNonClassDrivers)
		} else {
			kept = slicePlayerClass(g.Standings, opts)
		}
		out[i] = ClassGroup{ClassID: g.ClassID, Standings: kept}
	}
	return out
}

func slicePlayerClass(rows []Standing, opts SliceOptions) []Standing {
	if len(rows) <= opts.MinPlayerClassDrivers {
		return head(rows, len(rows))
	}

	player := -1
	for i, s := range rows {
		if s.IsPlayer {
			player = i
			break
		}
	}
	if player < 0 {
		return head(rows, opts.MinPlayerClassDrivers)
	}

	keep := make([]bool, len(rows))
	count := 0
	mark := func(i int) {
		if !keep[i] {
			keep[i] = true
			count++
		}
	}

	for i := 0; i < opts.NumTopDrivers && i < len(rows); i++ {
		mark(i)
	}
	start := max(player-opts.Buffer, 0)
	end := min(player+opts.Buffer, len(rows)-1)
	for i := start; i <= end; i++ {
		mark(i)
	}
	for i := end + 1; i < len(rows) && count < opts.MinPlayerClassDrivers; i++ {
		mark(i)
	}

	out := make([]Standing, 0, count)
	for i, s := range rows {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

// head copies the first n rows.
func head(rows []Standing, n int) []Standing {
	n = max(min(n, len(rows)), 0)
	out := make([]Standing, n)
	copy(out, rows[:n])
	return out
}
