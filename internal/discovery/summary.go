package discovery

import (
	"cmp"
	"math"
	"slices"
)

// Bucket is one facet value with the number of records carrying it.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats summarizes a numeric field. Absent values count as zero.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Summary aggregates a record set into the facets the discovery screen offers
// as filter options.
type Summary struct {
	Total       int      `json:"total"`
	Countries   []Bucket `json:"countries"`
	States      []Bucket `json:"states"`
	Cities      []Bucket `json:"cities"`
	Niches      []Bucket `json:"niches"`
	Categories  []Bucket `json:"categories"`
	Genders     []Bucket `json:"genders"`
	AgeBrackets []Bucket `json:"age_brackets"`
	// Platforms counts records with nonzero followers on each platform.
	Platforms  []Bucket `json:"platforms"`
	Followers  Stats    `json:"followers"`
	Engagement Stats    `json:"engagement"`
}

type counter map[string]int

func (c counter) add(v string) {
	if v != "" {
		c[v]++
	}
}

// buckets orders by count descending, then value ascending.
func (c counter) buckets() []Bucket {
	out := make([]Bucket, 0, len(c))
	for v, n := range c {
		out = append(out, Bucket{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

type accumulator struct {
	min, max, sum float64
	n             int
}

func (a *accumulator) add(v float64) {
	if a.n == 0 {
		a.min, a.max = v, v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	a.sum += v
	a.n++
}

func (a *accumulator) stats() Stats {
	if a.n == 0 {
		return Stats{}
	}
	return Stats{Min: a.min, Max: a.max, Mean: a.sum / float64(a.n)}
}

// Summarize computes facet counts and numeric ranges in one pass over records.
func Summarize(records []Record) Summary {
	countries, states, cities := counter{}, counter{}, counter{}
	niches, categories, genders := counter{}, counter{}, counter{}
	brackets, platforms := counter{}, counter{}
	var followers, engagement accumulator

	for _, r := range records {
		countries.add(r.CountryName())
		states.add(r.StateName())
		cities.add(r.CityName())
		niches.add(r.NicheName())
		categories.add(r.Category)
		genders.add(r.Gender)
		brackets.add(string(BracketFor(r.AgeValue())))
		for _, p := range r.ActivePlatforms() {
			platforms.add(string(p))
		}
		followers.add(float64(r.TotalFollowers()))
		engagement.add(r.EngagementValue())
	}

	ageBuckets := make([]Bucket, 0, len(AgeBrackets))
	for _, b := range AgeBrackets {
		if n := brackets[string(b)]; n > 0 {
			ageBuckets = append(ageBuckets, Bucket{Value: string(b), Count: n})
		}
	}

	return Summary{
		Total:       len(records),
		Countries:   countries.buckets(),
		States:      states.buckets(),
		Cities:      cities.buckets(),
		Niches:      niches.buckets(),
		Categories:  categories.buckets(),
		Genders:     genders.buckets(),
		AgeBrackets: ageBuckets,
		Platforms:   platforms.buckets(),
		Followers:   followers.stats(),
		Engagement:  engagement.stats(),
	}
}
