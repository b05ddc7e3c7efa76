package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/overlay.report/internal/rating"
	"github.com/banshee-data/overlay.report/internal/session"
)

func TestAugmentWithRatings(t *testing.T) {
	t.Parallel()

	ratings := []int{2502, 1202, 1585, 1409}
	rows := make([]Standing, len(ratings))
	for i, r := range ratings {
		rows[i] = Standing{CarIdx: 10 + i, ClassPosition: i + 1, Driver: DriverIdentity{Rating: r}, CarClass: CarClass{ID: 1}}
	}
	// A row without a class position is skipped.
	rows = append(rows, Standing{CarIdx: 40, Driver: DriverIdentity{Rating: 1500}, CarClass: CarClass{ID: 1}})

	other := []Standing{{CarIdx: 50, ClassPosition: 1, Driver: DriverIdentity{Rating: 1800}, CarClass: CarClass{ID: 2}}}
	groups := []ClassGroup{{ClassID: 1, Standings: rows}, {ClassID: 2, Standings: other}}

	got, err := AugmentWithRatings(groups)
	require.NoError(t, err)
	require.Len(t, got, 2)

	input := make([]rating.RaceResult[int], len(ratings))
	for i, r := range ratings {
		input[i] = rating.RaceResult[int]{Driver: 10 + i, FinishRank: i + 1, StartRating: r, Started: true}
	}
	want, err := rating.Estimate(input)
	require.NoError(t, err)

	for i, w := range want {
		require.NotNil(t, got[0].Standings[i].RatingChange)
		assert.Equal(t, w.RatingChange, *got[0].Standings[i].RatingChange)
	}
	assert.Nil(t, got[0].Standings[4].RatingChange)

	require.NotNil(t, got[1].Standings[0].RatingChange)
	// A lone finisher only gets the fudge factor.
	assert.InDelta(t, 1.0, *got[1].Standings[0].RatingChange, 1e-9)

	for _, r := range rows {
		assert.Nil(t, r.RatingChange, "input rows are not modified")
	}
}

func TestAugmentWithRatingsEmpty(t *testing.T) {
	t.Parallel()

	got, err := AugmentWithRatings(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = AugmentWithRatings([]ClassGroup{{ClassID: 1, Standings: []Standing{{CarIdx: 1}}}})
	require.NoError(t, err)
	assert.Nil(t, got[0].Standings[0].RatingChange)
}

func TestComputeClassStats(t *testing.T) {
	t.Parallel()

	drivers := []session.Driver{
		{CarIdx: 0, CarClassID: 2, CarClassShortName: "GT4", CarClassRelSpeed: 50, IRating: 1350},
		{CarIdx: 1, CarClassID: 4, CarClassShortName: "GTP", CarClassColor: 0xff, CarClassRelSpeed: 90, IRating: 3000},
		{CarIdx: 2, CarClassID: 4, CarClassShortName: "GTP", CarClassColor: 0xff, CarClassRelSpeed: 90, IRating: 2000},
		{CarIdx: 3, CarClassID: 7, CarClassShortName: "LMP3", CarClassRelSpeed: 50, IRating: 900},
	}

	got := ComputeClassStats(drivers)
	assert.Equal(t, []ClassStats{
		{ClassID: 4, Name: "GTP", Color: 0xff, Total: 2, SOF: 2500},
		{ClassID: 2, Name: "GT4", Total: 1, SOF: 1350},
		{ClassID: 7, Name: "LMP3", Total: 1, SOF: 900},
	}, got)

	assert.Empty(t, ComputeClassStats(nil))
}
