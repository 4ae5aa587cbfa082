package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

func wishlistID(userID, influencerID string) string {
	return userID + "/" + influencerID
}

// ToggleWishlist adds the influencer to the user's wishlist, or removes it if
// already present. It reports whether the influencer is now saved.
func (kv *KV) ToggleWishlist(ctx context.Context, userID, influencerID string) (bool, error) {
	key := wishlistID(userID, influencerID)

	exists, err := kv.Wishlist.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, kv.Wishlist.Delete(ctx, key)
	}

	entry := &domain.WishlistEntry{UserID: userID, InfluencerID: influencerID, AddedAt: time.Now()}
	if err := kv.Wishlist.Create(ctx, key, entry); err != nil {
		// Lost a race with a concurrent toggle that added it.
		if errors.Is(err, ErrAlreadyExists) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// InWishlist reports whether the user saved the influencer.
func (kv *KV) InWishlist(ctx context.Context, userID, influencerID string) (bool, error) {
	return kv.Wishlist.Exists(ctx, wishlistID(userID, influencerID))
}

// ListWishlist returns the user's entries, most recently added first.
func (kv *KV) ListWishlist(ctx context.Context, userID string) ([]*domain.WishlistEntry, error) {
	entries, err := Collect(kv.Wishlist.ListByIndex(ctx, "user", userID))
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b *domain.WishlistEntry) int {
		return b.AddedAt.Compare(a.AddedAt)
	})
	return entries, nil
}

// RemoveInfluencerFromWishlists drops every entry for an influencer and
// returns how many were removed.
func (kv *KV) RemoveInfluencerFromWishlists(ctx context.Context, influencerID string) (int, error) {
	entries, err := Collect(kv.Wishlist.ListByIndex(ctx, "influencer", influencerID))
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := kv.Wishlist.Delete(ctx, wishlistID(e.UserID, e.InfluencerID)); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// CountWishlisted returns how many users saved each influencer.
func (kv *KV) CountWishlisted(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for e, err := range kv.Wishlist.List(ctx) {
		if err != nil {
			return nil, err
		}
		counts[e.InfluencerID]++
	}
	return counts, nil
}
