package discovery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func followers(counts map[Platform]int64) map[Platform]*PlatformStats {
	data := make(map[Platform]*PlatformStats, len(counts))
	for p, n := range counts {
		data[p] = &PlatformStats{TotalFollowers: n}
	}
	return data
}

func roster() []Record {
	return []Record{
		{
			ID: "inf-1", Name: "Amara Okafor", Category: "Lifestyle", Gender: "female", Age: ptr(24),
			Country: &Place{Name: "Nigeria"}, State: &Place{Name: "Lagos"}, City: &Place{Name: "Ikeja"},
			Niche: &Niche{Name: "Fashion"}, EngagementRate: ptr(4.2),
			Data: followers(map[Platform]int64{Instagram: 120_000, YouTube: 30_000}),
		},
		{
			ID: "inf-2", Name: "Ben Carter", Category: "Tech", Gender: "male", Age: ptr(31),
			Country: &Place{Name: "United States"}, State: &Place{Name: "California"}, City: &Place{Name: "San Jose"},
			Niche: &Niche{Name: "Gadgets"}, EngagementRate: ptr(7.5),
			Data: followers(map[Platform]int64{YouTube: 900_000, Twitter: 150_000}),
		},
		{
			ID: "inf-3", Name: "Chloe Lin", Category: "Food", Gender: "female", Age: ptr(46),
			Country: &Place{Name: "Nigeria"}, Niche: &Niche{Name: "Cooking"}, EngagementRate: ptr(11.0),
			Data: followers(map[Platform]int64{Facebook: 5_000}),
		},
		// Sparse record: every optional field absent.
		{ID: "inf-4", Name: "Dee"},
	}
}

func TestFilter_EmptyCriteriaIsIdentity(t *testing.T) {
	in := roster()
	out := Filter(in, Criteria{})
	assert.Equal(t, in, out)

	assert.Equal(t, in, Filter(in, Criteria{Search: "   ", Followers: ptr(DefaultFollowerRange())}))
	assert.Empty(t, Filter(nil, Criteria{Gender: "female"}))
}

func TestFilter_MissingNestedFieldsNeverMatch(t *testing.T) {
	sparse := []Record{{ID: "x", Name: "Sparse", Data: map[Platform]*PlatformStats{Instagram: nil}}}

	criteria := []Criteria{
		{Country: "Nigeria"},
		{State: "Lagos"},
		{City: "Ikeja"},
		{Niche: "Fashion"},
		{ContentType: "Tech"},
		{Gender: "female"},
		{AgeBracket: Age18To25},
		{Engagement: &Range{Min: 1, Max: 10}},
		{Followers: &Range{Min: 1, Max: 100}},
		{Platforms: []Platform{Instagram}},
	}

	for _, c := range criteria {
		assert.NotPanics(t, func() {
			assert.Empty(t, Filter(sparse, c), "criteria %+v", c)
		})
	}
}

func TestFilter_ZeroValuesAdmittedByNumericRangesStartingAtZero(t *testing.T) {
	sparse := []Record{{ID: "x", Name: "Sparse"}}

	assert.Len(t, Filter(sparse, Criteria{Engagement: &Range{Min: 0, Max: 10}}), 1)
	assert.Len(t, Filter(sparse, Criteria{Followers: &Range{Min: 0, Max: 100}}), 1)
}

func TestFilter_Search(t *testing.T) {
	in := roster()

	assert.Equal(t, []string{"Ben Carter"}, names(Filter(in, Criteria{Search: "CARTER"})))
	assert.Equal(t, []string{"Ben Carter"}, names(Filter(in, Criteria{Search: "tec"})), "category substring")
	assert.Equal(t, []string{"Amara Okafor", "Chloe Lin"}, names(Filter(in, Criteria{Search: "o"})))
	assert.Empty(t, Filter(in, Criteria{Search: "zzz"}))
}

func TestFilter_Location(t *testing.T) {
	in := roster()

	assert.Equal(t, []string{"Amara Okafor", "Chloe Lin"}, names(Filter(in, Criteria{Country: "Nigeria"})))
	assert.Equal(t, []string{"Amara Okafor"}, names(Filter(in, Criteria{Country: "Nigeria", State: "Lagos"})))
	assert.Equal(t, []string{"Ben Carter"}, names(Filter(in, Criteria{City: "San Jose"})))
	assert.Empty(t, Filter(in, Criteria{Country: "nigeria"}), "exact match is case-sensitive")
}

func TestFilter_ScalarCriteria(t *testing.T) {
	in := roster()

	assert.Equal(t, []string{"Chloe Lin"}, names(Filter(in, Criteria{Niche: "Cooking"})))
	assert.Equal(t, []string{"Ben Carter"}, names(Filter(in, Criteria{ContentType: "Tech"})))
	assert.Equal(t, []string{"Amara Okafor", "Chloe Lin"}, names(Filter(in, Criteria{Gender: "female"})))
	assert.Equal(t, []string{"Ben Carter"}, names(Filter(in, Criteria{AgeBracket: Age26To35})))
}

func TestFilter_AgeBracketBoundary(t *testing.T) {
	in := []Record{
		{Name: "forty-five", Age: ptr(45)},
		{Name: "forty-six", Age: ptr(46)},
		{Name: "no-age"},
	}

	assert.Equal(t, []string{"forty-six"}, names(Filter(in, Criteria{AgeBracket: Age46Plus})))
	assert.Equal(t, []string{"forty-five"}, names(Filter(in, Criteria{AgeBracket: Age36To45})))
}

func TestFilter_EngagementRangeInclusive(t *testing.T) {
	in := []Record{
		{Name: "A", EngagementRate: ptr(5.0)},
		{Name: "B", EngagementRate: ptr(12.0)},
	}
	assert.Equal(t, []string{"A"}, names(Filter(in, Criteria{Engagement: &Range{Min: 0, Max: 10}})))

	edges := []Record{
		{Name: "low", EngagementRate: ptr(2.0)},
		{Name: "high", EngagementRate: ptr(10.0)},
		{Name: "over", EngagementRate: ptr(10.01)},
	}
	assert.Equal(t, []string{"low", "high"}, names(Filter(edges, Criteria{Engagement: &Range{Min: 2, Max: 10}})))
}

func TestFilter_FollowerRange(t *testing.T) {
	in := []Record{
		{Name: "exactly-ceiling", Data: followers(map[Platform]int64{Instagram: 1_000_000, Facebook: 500_000})},
		{Name: "above-ceiling", Data: followers(map[Platform]int64{YouTube: 3_000_000})},
		{Name: "small", Data: followers(map[Platform]int64{Twitter: 10_000})},
		{Name: "none"},
	}

	t.Run("default range admits everything", func(t *testing.T) {
		def := DefaultFollowerRange()
		assert.Equal(t, names(in), names(Filter(in, Criteria{Followers: &def})))
	})

	t.Run("ceiling is inclusive", func(t *testing.T) {
		got := Filter(in, Criteria{Followers: &Range{Min: 1_500_000, Max: FollowerCeiling}})
		assert.Equal(t, []string{"exactly-ceiling", "above-ceiling"}, names(got))
	})

	t.Run("bounded range", func(t *testing.T) {
		got := Filter(in, Criteria{Followers: &Range{Min: 10_000, Max: 1_499_999}})
		assert.Equal(t, []string{"small"}, names(got))

		got = Filter(in, Criteria{Followers: &Range{Min: 0, Max: 10_000}})
		assert.Equal(t, []string{"small", "none"}, names(got))
	})

	t.Run("unknown platform keys do not count", func(t *testing.T) {
		r := Record{Name: "tiktok-only", Data: map[Platform]*PlatformStats{"tiktok": {TotalFollowers: 50}}}
		assert.Equal(t, int64(0), r.TotalFollowers())
		assert.Empty(t, Filter([]Record{r}, Criteria{Followers: &Range{Min: 1, Max: 100}}))
	})
}

func TestFilter_PlatformSet(t *testing.T) {
	in := []Record{
		{Name: "fb-only", Data: followers(map[Platform]int64{Instagram: 0, Facebook: 5000})},
		{Name: "ig", Data: followers(map[Platform]int64{Instagram: 10})},
		{Name: "yt", Data: followers(map[Platform]int64{YouTube: 10})},
	}

	assert.Equal(t, []string{"ig"}, names(Filter(in, Criteria{Platforms: []Platform{Instagram}})))
	assert.Equal(t, []string{"ig", "yt"}, names(Filter(in, Criteria{Platforms: []Platform{Instagram, YouTube}})), "OR within the set")
	assert.Equal(t, names(in), names(Filter(in, Criteria{Platforms: nil})))
}

func TestFilter_CriteriaCombineWithAnd(t *testing.T) {
	in := roster()

	c := Criteria{
		Country:    "Nigeria",
		Gender:     "female",
		Engagement: &Range{Min: 0, Max: 10},
		Platforms:  []Platform{Instagram, YouTube},
	}
	assert.Equal(t, []string{"Amara Okafor"}, names(Filter(in, c)))

	c.AgeBracket = Age46Plus
	assert.Empty(t, Filter(in, c))
}

func TestFilter_PreservesOrder(t *testing.T) {
	in := []Record{
		{Name: "z", Gender: "x"},
		{Name: "a", Gender: "y"},
		{Name: "m", Gender: "x"},
		{Name: "b", Gender: "x"},
	}
	assert.Equal(t, []string{"z", "m", "b"}, names(Filter(in, Criteria{Gender: "x"})))
}

func TestMatch(t *testing.T) {
	r := roster()[1]
	assert.True(t, Match(r, Criteria{}))
	assert.True(t, Match(r, Criteria{Search: "ben", City: "San Jose"}))
	assert.False(t, Match(r, Criteria{Search: "ben", City: "Oakland"}))
}

func TestPaginate(t *testing.T) {
	in := roster()

	assert.Equal(t, []string{"Amara Okafor", "Ben Carter"}, names(Paginate(in, 0, 2)))
	assert.Equal(t, []string{"Chloe Lin", "Dee"}, names(Paginate(in, 2, 10)))
	assert.Len(t, Paginate(in, -5, 0), 4)
	assert.Empty(t, Paginate(in, 4, 2))
	require.NotNil(t, Paginate([]Record(nil), 0, 10))
}

func TestPaginate_HugeLimitDoesNotOverflow(t *testing.T) {
	in := roster()

	assert.Equal(t, []string{"Ben Carter", "Chloe Lin", "Dee"}, names(Paginate(in, 1, math.MaxInt)))
	assert.Len(t, Paginate(in, 0, math.MaxInt), 4)
}

func TestFilterBy(t *testing.T) {
	type profile struct {
		id  string
		rec Record
	}
	var in []profile
	for i, r := range roster() {
		in = append(in, profile{id: string(rune('a' + i)), rec: r})
	}
	rec := func(p profile) Record { return p.rec }

	assert.Len(t, FilterBy(in, rec, Criteria{}), len(in))

	c := Criteria{Search: "ben", City: "San Jose"}
	got := FilterBy(in, rec, c)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].id)
	assert.Equal(t, names(Filter(roster(), c)), []string{got[0].rec.Name})
}
