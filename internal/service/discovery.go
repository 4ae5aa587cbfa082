package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// DiscoveryService serves the filtered influencer list.
type DiscoveryService struct {
	store           store.Store
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
}

// NewDiscoveryService creates a discovery service with the given page bounds.
func NewDiscoveryService(store store.Store, defaultPageSize, maxPageSize int, logger *slog.Logger) *DiscoveryService {
	return &DiscoveryService{
		store:           store,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// DiscoveryPage is one page of matching profiles. Total and Summary cover
// every match, not just the page.
type DiscoveryPage struct {
	Items   []*domain.Influencer `json:"items"`
	Total   int                  `json:"total"`
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
	Summary discovery.Summary    `json:"summary"`
}

// Discover filters the roster with criteria and returns the page at offset.
func (s *DiscoveryService) Discover(ctx context.Context, criteria discovery.Criteria, offset, limit int) (*DiscoveryPage, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	limit = s.clampLimit(limit)
	offset = max(offset, 0)

	roster, err := s.store.ListInfluencers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}

	matched := discovery.FilterBy(roster, influencerRecord, criteria)

	page := &DiscoveryPage{
		Items:   discovery.Paginate(matched, offset, limit),
		Total:   len(matched),
		Offset:  offset,
		Limit:   limit,
		Summary: discovery.Summarize(domain.Records(matched)),
	}

	s.logger.Debug("discovery query",
		"active", criteria.Active(),
		"roster", len(roster),
		"matched", page.Total,
	)
	return page, nil
}

// Facets summarizes the whole roster: the filter options offered before any
// criterion is chosen.
func (s *DiscoveryService) Facets(ctx context.Context) (discovery.Summary, error) {
	roster, err := s.store.ListInfluencers(ctx)
	if err != nil {
		return discovery.Summary{}, fmt.Errorf("list influencers: %w", err)
	}
	return discovery.Summarize(domain.Records(roster)), nil
}

func (s *DiscoveryService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultPageSize
	}
	if s.maxPageSize > 0 {
		return min(limit, s.maxPageSize)
	}
	return limit
}

func influencerRecord(inf *domain.Influencer) discovery.Record { return inf.Record }
