package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// AdminService builds the operator dashboard.
type AdminService struct {
	store  store.Store
	kv     *store.KV
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store store.Store, kv *store.KV, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, kv: kv, logger: logger}
}

// Dashboard is a snapshot of marketplace activity.
type Dashboard struct {
	UsersByRole map[domain.Role]int `json:"users_by_role"`
	Influencers int                 `json:"influencers"`
	Orders      *store.OrderStats   `json:"orders"`
	// WalletFloat is the sum of every wallet balance.
	WalletFloat int64 `json:"wallet_float"`
	// Escrow is held for pending and accepted orders on top of the float.
	Escrow int64 `json:"escrow"`
	// MostWishlisted lists influencer IDs by how many businesses saved them.
	MostWishlisted []discovery.Bucket `json:"most_wishlisted"`
	Roster         discovery.Summary  `json:"roster"`
}

const mostWishlistedLimit = 10

// Dashboard gathers the counts shown on the admin home page.
func (s *AdminService) Dashboard(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	byRole, err := s.store.CountUsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	roster, err := s.store.ListInfluencers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}
	orders, err := s.store.OrderStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	float, err := s.store.TotalWalletBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("wallet balance: %w", err)
	}
	wished, err := s.kv.CountWishlisted(ctx)
	if err != nil {
		return nil, fmt.Errorf("count wishlists: %w", err)
	}

	return &Dashboard{
		UsersByRole:    byRole,
		Influencers:    len(roster),
		Orders:         orders,
		WalletFloat:    float,
		Escrow:         orders.Escrowed,
		MostWishlisted: topBuckets(wished, mostWishlistedLimit),
		Roster:         discovery.Summarize(domain.Records(roster)),
	}, nil
}

// topBuckets returns the n largest counts, ties broken by value.
func topBuckets(counts map[string]int, n int) []discovery.Bucket {
	out := make([]discovery.Bucket, 0, len(counts))
	for v, c := range counts {
		out = append(out, discovery.Bucket{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b discovery.Bucket) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Value, b.Value))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
