package api

import (
	"cmp"
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchInfluencers",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/influencers",
		Summary:     "Search influencers",
		Description: "Ranked full-text search over profiles with facets and highlights",
		Tags:        []string{"Search"},
	}, s.handleSearchInfluencers)
}

// === DTOs ===

// SearchInfluencersInput contains the search query and filters.
type SearchInfluencersInput struct {
	Query         string  `query:"q" maxLength:"200" doc:"Search text; empty matches everything"`
	Country       string  `query:"country" doc:"Country filter"`
	State         string  `query:"state" doc:"State filter"`
	City          string  `query:"city" doc:"City filter"`
	Niche         string  `query:"niche" doc:"Niche filter"`
	Gender        string  `query:"gender" doc:"Gender filter"`
	Platforms     string  `query:"platforms" doc:"Comma-separated platforms, any of"`
	MinFollowers  int64   `query:"followers_min" minimum:"0" doc:"Minimum follower total"`
	MaxFollowers  int64   `query:"followers_max" minimum:"0" doc:"Maximum follower total"`
	MinEngagement float64 `query:"engagement_min" minimum:"0" doc:"Minimum engagement rate"`
	MaxEngagement float64 `query:"engagement_max" minimum:"0" doc:"Maximum engagement rate"`
	MaxPrice      int64   `query:"price_max" minimum:"0" doc:"Maximum price per post"`
	Sort          string  `query:"sort" enum:"relevance,followers,engagement,price,recent" default:"relevance" doc:"Sort field"`
	Order         string  `query:"order" enum:"asc,desc" default:"desc" doc:"Sort order"`
	Limit         int     `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 20)"`
	Offset        int     `query:"offset" minimum:"0" doc:"Pagination offset"`
	Facets        bool    `query:"facets" default:"true" doc:"Include facets"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (in *SearchInfluencersInput) params() search.SearchParams {
	params := search.DefaultSearchParams()
	params.Query = strings.TrimSpace(in.Query)
	params.Country = in.Country
	params.State = in.State
	params.City = in.City
	params.Niche = in.Niche
	params.Gender = in.Gender
	params.MinFollowers = in.MinFollowers
	params.MaxFollowers = in.MaxFollowers
	params.MinEngagement = in.MinEngagement
	params.MaxEngagement = in.MaxEngagement
	params.MaxPrice = in.MaxPrice
	params.SortBy = cmp.Or(in.Sort, search.SortRelevance)
	params.SortOrder = cmp.Or(in.Order, "desc")
	params.Limit = cmp.Or(in.Limit, params.Limit)
	params.Offset = in.Offset
	params.IncludeFacets = in.Facets

	for p := range strings.SplitSeq(in.Platforms, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			params.Platforms = append(params.Platforms, p)
		}
	}
	return params
}

// === Handlers ===

func (s *Server) handleSearchInfluencers(ctx context.Context, input *SearchInfluencersInput) (*SearchOutput, error) {
	params := input.params()

	s.logger.Debug("search request received",
		"query", params.Query,
		"sort", params.SortBy,
		"limit", params.Limit,
	)

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
