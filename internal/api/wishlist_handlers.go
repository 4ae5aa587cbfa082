package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerWishlistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listWishlist",
		Method:      http.MethodGet,
		Path:        "/api/v1/wishlist",
		Summary:     "List wishlist",
		Description: "Returns the saved influencers, most recently saved first",
		Tags:        []string{"Wishlist"},
		Security:    bearerSecurity,
	}, s.handleListWishlist)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleWishlist",
		Method:      http.MethodPost,
		Path:        "/api/v1/wishlist/{influencer_id}",
		Summary:     "Toggle wishlist entry",
		Description: "Saves the influencer, or removes it when already saved",
		Tags:        []string{"Wishlist"},
		Security:    bearerSecurity,
	}, s.handleToggleWishlist)
}

// === DTOs ===

// WishlistResponse lists saved influencers.
type WishlistResponse struct {
	Items []InfluencerResponse `json:"items" doc:"Saved influencers"`
}

// WishlistOutput wraps the wishlist for Huma.
type WishlistOutput struct {
	Body WishlistResponse
}

// ToggleWishlistInput identifies the influencer to toggle.
type ToggleWishlistInput struct {
	AuthenticatedInput
	InfluencerID string `path:"influencer_id" doc:"Influencer ID"`
}

// ToggleWishlistResponse reports the entry's new state.
type ToggleWishlistResponse struct {
	InfluencerID string `json:"influencer_id" doc:"Influencer ID"`
	Saved        bool   `json:"saved" doc:"True when the influencer is now on the wishlist"`
}

// ToggleWishlistOutput wraps the toggle result for Huma.
type ToggleWishlistOutput struct {
	Body ToggleWishlistResponse
}

// === Handlers ===

func (s *Server) handleListWishlist(ctx context.Context, _ *AuthenticatedInput) (*WishlistOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	infs, err := s.services.Wishlist.List(ctx, user)
	if err != nil {
		return nil, err
	}
	return &WishlistOutput{Body: WishlistResponse{Items: toInfluencerResponses(infs)}}, nil
}

func (s *Server) handleToggleWishlist(ctx context.Context, input *ToggleWishlistInput) (*ToggleWishlistOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Wishlist.Toggle(ctx, user, input.InfluencerID)
	if err != nil {
		return nil, err
	}
	return &ToggleWishlistOutput{Body: ToggleWishlistResponse{
		InfluencerID: res.InfluencerID,
		Saved:        res.Added,
	}}, nil
}
