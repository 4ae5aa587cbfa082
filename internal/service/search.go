package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reachlyapp/reachly-server/internal/search"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// SearchService bridges the search index and the store. Profile writes reach
// the index through the store; this service runs queries and rebuilds.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a full-text query with filters and facets.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed profiles.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index and indexes every live profile again.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	roster, err := s.store.ListInfluencers(ctx)
	if err != nil {
		return fmt.Errorf("list influencers: %w", err)
	}

	docs := make([]*search.Document, 0, len(roster))
	for _, inf := range roster {
		docs = append(docs, search.InfluencerToDocument(inf))
	}
	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index influencers: %w", err)
		}
	}

	s.logger.Info("reindex complete", "influencers", len(docs))
	return nil
}

// EnsureIndexed rebuilds the index when it was just created or holds fewer
// profiles than the store. Run at startup.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	count, err := s.store.CountInfluencers(ctx)
	if err != nil {
		return fmt.Errorf("count influencers: %w", err)
	}
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if !s.index.Fresh() && indexed == uint64(count) {
		return nil
	}
	s.logger.Info("search index out of date",
		"fresh", s.index.Fresh(),
		"indexed", indexed,
		"influencers", count,
	)
	return s.ReindexAll(ctx)
}
