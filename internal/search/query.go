package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance  = "relevance"
	SortFollowers  = "followers"
	SortEngagement = "engagement"
	SortPrice      = "price"
	SortRecent     = "recent"
)

// Facet fields.
const (
	FacetCountry   = "country"
	FacetNiche     = "niche"
	FacetPlatforms = "platforms"
	FacetGender    = "gender"
)

// SearchParams configures a search query. Zero values leave a filter off.
type SearchParams struct {
	Query string

	Country   string
	State     string
	City      string
	Niche     string
	Gender    string
	Platforms []string // any of

	MinFollowers  int64
	MaxFollowers  int64
	MinEngagement float64
	MaxEngagement float64
	MaxPrice      int64

	Limit  int
	Offset int

	SortBy    string
	SortOrder string // "asc" or "desc"

	IncludeFacets bool
	FacetFields   []string
	Highlight     bool
}

// DefaultSearchParams returns the parameters the API starts from.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        SortRelevance,
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{FacetCountry, FacetNiche, FacetPlatforms},
		Highlight:     true,
	}
}

// SearchResult is one page of hits.
type SearchResult struct {
	Query  string                  `json:"query"`
	Total  uint64                  `json:"total"`
	TookMs int64                   `json:"took_ms"`
	Hits   []SearchHit             `json:"hits"`
	Facets map[string][]FacetCount `json:"facets,omitempty"`
}

// SearchHit is a matched profile with its stored summary fields.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Slug       string            `json:"slug"`
	Name       string            `json:"name"`
	Category   string            `json:"category,omitempty"`
	Country    string            `json:"country,omitempty"`
	City       string            `json:"city,omitempty"`
	Niche      string            `json:"niche,omitempty"`
	Platforms  []string          `json:"platforms,omitempty"`
	Followers  int64             `json:"followers"`
	Engagement float64           `json:"engagement"`
	Price      int64             `json:"price_per_post"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and the number of hits carrying it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var storedFields = []string{
	"id", "slug", "name", "category", "country", "city", "niche", "platforms",
	"followers", "engagement", "price_per_post",
}

// Search executes a query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		for _, field := range params.FacetFields {
			req.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}
	req.Fields = storedFields

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := SearchHit{
			ID:         hit.ID,
			Score:      hit.Score,
			Slug:       stringField(hit.Fields, "slug"),
			Name:       stringField(hit.Fields, "name"),
			Category:   stringField(hit.Fields, "category"),
			Country:    stringField(hit.Fields, "country"),
			City:       stringField(hit.Fields, "city"),
			Niche:      stringField(hit.Fields, "niche"),
			Platforms:  stringsField(hit.Fields, "platforms"),
			Followers:  int64(numberField(hit.Fields, "followers")),
			Engagement: numberField(hit.Fields, "engagement"),
			Price:      int64(numberField(hit.Fields, "price_per_post")),
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}
	return result, nil
}

// buildSearchQuery ANDs the text query with every active filter.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		categoryMatch := bleve.NewMatchQuery(q)
		categoryMatch.SetField("category")
		categoryMatch.SetBoost(1.5)

		nicheMatch := bleve.NewMatchQuery(q)
		nicheMatch.SetField("niche_text")
		nicheMatch.SetBoost(1.5)

		locationMatch := bleve.NewMatchQuery(q)
		locationMatch.SetField("location")

		bioMatch := bleve.NewMatchQuery(q)
		bioMatch.SetField("bio")
		bioMatch.SetBoost(0.5)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		text := []query.Query{nameMatch, categoryMatch, nicheMatch, locationMatch, bioMatch, fuzzy}

		// Prefix matching for type-ahead, two characters minimum.
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	for field, value := range map[string]string{
		"country": params.Country,
		"state":   params.State,
		"city":    params.City,
		"niche":   params.Niche,
		"gender":  params.Gender,
	} {
		if value == "" {
			continue
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		queries = append(queries, tq)
	}

	if len(params.Platforms) > 0 {
		platformQueries := make([]query.Query, len(params.Platforms))
		for i, p := range params.Platforms {
			tq := bleve.NewTermQuery(p)
			tq.SetField("platforms")
			platformQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(platformQueries...))
	}

	if q := numericRange("followers", float64(params.MinFollowers), float64(params.MaxFollowers)); q != nil {
		queries = append(queries, q)
	}
	if q := numericRange("engagement", params.MinEngagement, params.MaxEngagement); q != nil {
		queries = append(queries, q)
	}
	if q := numericRange("price_per_post", 0, float64(params.MaxPrice)); q != nil {
		queries = append(queries, q)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// numericRange builds an inclusive range; a zero bound is open.
func numericRange(field string, lo, hi float64) query.Query {
	if lo <= 0 && hi <= 0 {
		return nil
	}
	var minPtr, maxPtr *float64
	if lo > 0 {
		minPtr = &lo
	}
	if hi > 0 {
		maxPtr = &hi
	}
	inclusive := true
	rq := bleve.NewNumericRangeInclusiveQuery(minPtr, maxPtr, &inclusive, &inclusive)
	rq.SetField(field)
	return rq
}

func addSorting(req *bleve.SearchRequest, params SearchParams) {
	field := ""
	switch params.SortBy {
	case SortFollowers:
		field = "followers"
	case SortEngagement:
		field = "engagement"
	case SortPrice:
		field = "price_per_post"
	case SortRecent:
		field = "created_at"
	default:
		req.SortBy([]string{"-_score"})
		return
	}
	if params.SortOrder == "asc" {
		req.SortBy([]string{field, "id"})
	} else {
		req.SortBy([]string{"-" + field, "id"})
	}
}

func extractFacets(res *bleve.SearchResult) map[string][]FacetCount {
	facets := make(map[string][]FacetCount, len(res.Facets))
	for name, facet := range res.Facets {
		if facet.Terms == nil {
			continue
		}
		terms := facet.Terms.Terms()
		counts := make([]FacetCount, 0, len(terms))
		for _, term := range terms {
			counts = append(counts, FacetCount{Value: term.Term, Count: term.Count})
		}
		facets[name] = counts
	}
	return facets
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// stringsField reads a stored multi-value field. Bleve returns a bare string
// when the array had a single element.
func stringsField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func numberField(fields map[string]any, name string) float64 {
	f, _ := fields[name].(float64)
	return f
}
