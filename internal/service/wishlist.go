package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// WishlistService keeps each business's saved influencers.
type WishlistService struct {
	store  store.Store
	kv     *store.KV
	logger *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(store store.Store, kv *store.KV, logger *slog.Logger) *WishlistService {
	return &WishlistService{store: store, kv: kv, logger: logger}
}

// ToggleResult reports the wishlist state after a toggle.
type ToggleResult struct {
	InfluencerID string `json:"influencer_id"`
	Added        bool   `json:"added"`
}

// Toggle saves the influencer, or removes it when already saved.
func (s *WishlistService) Toggle(ctx context.Context, actor *domain.User, influencerID string) (*ToggleResult, error) {
	if err := requireBusiness(actor); err != nil {
		return nil, err
	}

	inWishlist, err := s.kv.InWishlist(ctx, actor.ID, influencerID)
	if err != nil {
		return nil, err
	}
	// Removing works even for deleted profiles; adding needs a live one.
	if !inWishlist {
		if _, err := s.store.GetInfluencer(ctx, influencerID); err != nil {
			return nil, notFound(err, "influencer")
		}
	}

	added, err := s.kv.ToggleWishlist(ctx, actor.ID, influencerID)
	if err != nil {
		return nil, fmt.Errorf("toggle wishlist: %w", err)
	}
	s.logger.Debug("wishlist toggled", "user_id", actor.ID, "influencer_id", influencerID, "added", added)
	return &ToggleResult{InfluencerID: influencerID, Added: added}, nil
}

// List returns the saved live profiles, most recently saved first.
func (s *WishlistService) List(ctx context.Context, actor *domain.User) ([]*domain.Influencer, error) {
	if err := requireBusiness(actor); err != nil {
		return nil, err
	}

	entries, err := s.kv.ListWishlist(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.InfluencerID
	}

	infs, err := s.store.GetInfluencersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if infs == nil {
		infs = []*domain.Influencer{}
	}
	return infs, nil
}

// Contains reports whether the actor saved the influencer.
func (s *WishlistService) Contains(ctx context.Context, actor *domain.User, influencerID string) (bool, error) {
	if err := requireBusiness(actor); err != nil {
		return false, err
	}
	return s.kv.InWishlist(ctx, actor.ID, influencerID)
}
