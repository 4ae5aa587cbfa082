package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/reachlyapp/reachly-server/internal/color"
	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/http/response"
	"github.com/reachlyapp/reachly-server/internal/service"
)

func (s *Server) registerInfluencerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "discoverInfluencers",
		Method:      http.MethodGet,
		Path:        "/api/v1/influencers",
		Summary:     "Discover influencers",
		Description: "Filters the roster. Every criterion is optional and they combine with AND. Total and summary cover all matches, not just the page.",
		Tags:        []string{"Influencers"},
	}, s.handleDiscoverInfluencers)

	huma.Register(s.api, huma.Operation{
		OperationID: "influencerFacets",
		Method:      http.MethodGet,
		Path:        "/api/v1/influencers/facets",
		Summary:     "Filter options",
		Description: "Returns the values and ranges present in the whole roster",
		Tags:        []string{"Influencers"},
	}, s.handleInfluencerFacets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getInfluencer",
		Method:      http.MethodGet,
		Path:        "/api/v1/influencers/{id}",
		Summary:     "Get influencer",
		Description: "Returns a profile by ID or slug",
		Tags:        []string{"Influencers"},
	}, s.handleGetInfluencer)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createInfluencer",
		Method:        http.MethodPost,
		Path:          "/api/v1/influencers",
		Summary:       "Create influencer",
		Description:   "Creates a profile. Influencers own what they create; admins may assign an owner.",
		Tags:          []string{"Influencers"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleCreateInfluencer)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateInfluencer",
		Method:      http.MethodPatch,
		Path:        "/api/v1/influencers/{id}",
		Summary:     "Update influencer",
		Description: "Changes the fields that are present. Owner or admin only.",
		Tags:        []string{"Influencers"},
		Security:    bearerSecurity,
	}, s.handleUpdateInfluencer)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteInfluencer",
		Method:      http.MethodDelete,
		Path:        "/api/v1/influencers/{id}",
		Summary:     "Delete influencer",
		Description: "Removes a profile from discovery. Owner or admin only.",
		Tags:        []string{"Influencers"},
		Security:    bearerSecurity,
	}, s.handleDeleteInfluencer)

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadInfluencerAvatar",
		Method:       http.MethodPut,
		Path:         "/api/v1/influencers/{id}/avatar",
		Summary:      "Upload avatar",
		Description:  "Stores a JPEG, PNG or WebP avatar sent as the raw request body",
		Tags:         []string{"Influencers"},
		MaxBodyBytes: MaxUploadSize,
		Security:     bearerSecurity,
	}, s.handleUploadAvatar)

	// Binary response, served outside huma.
	s.router.Get("/api/v1/influencers/{id}/avatar", s.handleGetAvatar)
}

// === DTOs ===

// DiscoverInfluencersInput holds the discovery criteria as query parameters.
type DiscoverInfluencersInput struct {
	Q             string `query:"q" doc:"Case-insensitive substring of name or category"`
	Country       string `query:"country" doc:"Exact country name"`
	State         string `query:"state" doc:"Exact state name"`
	City          string `query:"city" doc:"Exact city name"`
	Niche         string `query:"niche" doc:"Exact niche name"`
	ContentType   string `query:"content_type" doc:"Exact category"`
	Gender        string `query:"gender" doc:"Exact gender"`
	AgeBracket    string `query:"age_bracket" doc:"18-25, 26-35, 36-45 or 46+"`
	EngagementMin string `query:"engagement_min" doc:"Minimum engagement rate percentage"`
	EngagementMax string `query:"engagement_max" doc:"Maximum engagement rate percentage"`
	FollowersMin  string `query:"followers_min" doc:"Minimum follower total"`
	FollowersMax  string `query:"followers_max" doc:"Maximum follower total; 1500000 or more means no upper bound"`
	Platforms     string `query:"platforms" doc:"Comma-separated platforms; a profile needs followers on at least one"`
	Offset        int    `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit         int    `query:"limit" minimum:"0" default:"0" doc:"Page size; 0 uses the server default"`
}

// PlatformStatsBody is one platform's audience.
type PlatformStatsBody struct {
	TotalFollowers int64  `json:"total_followers" minimum:"0" doc:"Follower count"`
	Handle         string `json:"handle,omitempty" doc:"Account handle"`
}

// InfluencerResponse is a profile in API responses.
type InfluencerResponse struct {
	ID             string                       `json:"id" doc:"Influencer ID"`
	Slug           string                       `json:"slug" doc:"URL slug"`
	UserID         string                       `json:"user_id,omitempty" doc:"Owning influencer account"`
	Name           string                       `json:"name" doc:"Display name"`
	Category       string                       `json:"category,omitempty" doc:"Content type"`
	Gender         string                       `json:"gender,omitempty" doc:"Gender"`
	Age            *int                         `json:"age,omitempty" doc:"Age in years"`
	AgeBracket     string                       `json:"age_bracket,omitempty" doc:"Age bracket derived from age"`
	Country        string                       `json:"country,omitempty" doc:"Country"`
	State          string                       `json:"state,omitempty" doc:"State"`
	City           string                       `json:"city,omitempty" doc:"City"`
	Niche          string                       `json:"niche,omitempty" doc:"Niche"`
	EngagementRate *float64                     `json:"engagement_rate,omitempty" doc:"Engagement rate percentage"`
	Platforms      map[string]PlatformStatsBody `json:"platforms,omitempty" doc:"Audience per platform"`
	TotalFollowers int64                        `json:"total_followers" doc:"Followers across all platforms"`
	Bio            string                       `json:"bio,omitempty" doc:"Markdown bio"`
	PricePerPost   int64                        `json:"price_per_post" doc:"Price per post in minor units"`
	Currency       string                       `json:"currency" doc:"ISO 4217 currency"`
	AvatarURL      string                       `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	AvatarBlurHash string                       `json:"avatar_blurhash,omitempty" doc:"BlurHash placeholder for the avatar"`
	AvatarColor    string                       `json:"avatar_color" doc:"Placeholder color shown without an avatar"`
	CreatedAt      time.Time                    `json:"created_at" doc:"Creation time"`
	UpdatedAt      time.Time                    `json:"updated_at" doc:"Last update time"`
}

// DiscoverResponse is one page of discovery results.
type DiscoverResponse struct {
	Items   []InfluencerResponse `json:"items" doc:"Matching profiles on this page"`
	Total   int                  `json:"total" doc:"Matches across all pages"`
	Offset  int                  `json:"offset" doc:"Items skipped"`
	Limit   int                  `json:"limit" doc:"Page size used"`
	Summary discovery.Summary    `json:"summary" doc:"Facets over all matches"`
}

// DiscoverOutput wraps the discovery response for Huma.
type DiscoverOutput struct {
	Body DiscoverResponse
}

// FacetsOutput wraps the roster summary for Huma.
type FacetsOutput struct {
	Body discovery.Summary
}

// InfluencerIDInput identifies a profile by ID or slug.
type InfluencerIDInput struct {
	ID string `path:"id" doc:"Influencer ID or slug"`
}

// AuthenticatedInfluencerInput identifies a profile for an authenticated call.
type AuthenticatedInfluencerInput struct {
	AuthenticatedInput
	ID string `path:"id" doc:"Influencer ID or slug"`
}

// InfluencerOutput wraps a profile for Huma.
type InfluencerOutput struct {
	Body InfluencerResponse
}

// CreateInfluencerBody is the request body for creating a profile.
type CreateInfluencerBody struct {
	Slug           string                       `json:"slug,omitempty" maxLength:"80" doc:"URL slug; derived from the name when empty"`
	Name           string                       `json:"name" minLength:"1" maxLength:"200" doc:"Display name"`
	Category       string                       `json:"category,omitempty" doc:"Content type"`
	Gender         string                       `json:"gender,omitempty" doc:"Gender"`
	Age            *int                         `json:"age,omitempty" doc:"Age in years"`
	Country        string                       `json:"country,omitempty" doc:"Country"`
	State          string                       `json:"state,omitempty" doc:"State"`
	City           string                       `json:"city,omitempty" doc:"City"`
	Niche          string                       `json:"niche,omitempty" doc:"Niche"`
	EngagementRate *float64                     `json:"engagement_rate,omitempty" doc:"Engagement rate percentage"`
	Platforms      map[string]PlatformStatsBody `json:"platforms,omitempty" doc:"Audience per platform"`
	Bio            string                       `json:"bio,omitempty" doc:"Markdown bio"`
	BioHTML        string                       `json:"bio_html,omitempty" doc:"HTML bio, converted to markdown"`
	PricePerPost   int64                        `json:"price_per_post,omitempty" doc:"Price per post in minor units"`
	Currency       string                       `json:"currency,omitempty" doc:"ISO 4217 currency; server default when empty"`
	UserID         string                       `json:"user_id,omitempty" doc:"Owner account (admins only)"`
}

// CreateInfluencerInput wraps the create request for Huma.
type CreateInfluencerInput struct {
	AuthenticatedInput
	Body CreateInfluencerBody
}

// UpdateInfluencerBody changes the fields that are present.
type UpdateInfluencerBody struct {
	Name           *string                      `json:"name,omitempty" doc:"Display name"`
	Category       *string                      `json:"category,omitempty" doc:"Content type"`
	Gender         *string                      `json:"gender,omitempty" doc:"Gender"`
	Age            *int                         `json:"age,omitempty" doc:"Age in years"`
	Country        *string                      `json:"country,omitempty" doc:"Country; empty clears it"`
	State          *string                      `json:"state,omitempty" doc:"State; empty clears it"`
	City           *string                      `json:"city,omitempty" doc:"City; empty clears it"`
	Niche          *string                      `json:"niche,omitempty" doc:"Niche; empty clears it"`
	EngagementRate *float64                     `json:"engagement_rate,omitempty" doc:"Engagement rate percentage"`
	Platforms      map[string]PlatformStatsBody `json:"platforms,omitempty" doc:"Replaces the audience per platform"`
	Bio            *string                      `json:"bio,omitempty" doc:"Markdown bio"`
	BioHTML        *string                      `json:"bio_html,omitempty" doc:"HTML bio, converted to markdown"`
	PricePerPost   *int64                       `json:"price_per_post,omitempty" doc:"Price per post in minor units"`
	Currency       *string                      `json:"currency,omitempty" doc:"ISO 4217 currency"`
}

// UpdateInfluencerInput wraps the update request for Huma.
type UpdateInfluencerInput struct {
	AuthenticatedInput
	ID   string `path:"id" doc:"Influencer ID or slug"`
	Body UpdateInfluencerBody
}

// UploadAvatarInput carries a raw image body.
type UploadAvatarInput struct {
	AuthenticatedInput
	ID          string `path:"id" doc:"Influencer ID or slug"`
	ContentType string `header:"Content-Type" doc:"Image content type"`
	RawBody     []byte
}

// === Mappers ===

func toInfluencerResponse(inf *domain.Influencer) InfluencerResponse {
	resp := InfluencerResponse{
		ID:             inf.ID,
		Slug:           inf.Slug,
		UserID:         inf.UserID,
		Name:           inf.Name,
		Category:       inf.Category,
		Gender:         inf.Gender,
		Age:            inf.Age,
		Country:        inf.CountryName(),
		State:          inf.StateName(),
		City:           inf.CityName(),
		Niche:          inf.NicheName(),
		EngagementRate: inf.EngagementRate,
		TotalFollowers: inf.TotalFollowers(),
		Bio:            inf.Bio,
		PricePerPost:   inf.PricePerPost,
		Currency:       inf.Currency,
		AvatarBlurHash: inf.AvatarBlurHash,
		CreatedAt:      inf.CreatedAt,
		UpdatedAt:      inf.UpdatedAt,
	}
	if inf.Age != nil {
		resp.AgeBracket = string(discovery.BracketFor(*inf.Age))
	}
	if len(inf.Data) > 0 {
		resp.Platforms = make(map[string]PlatformStatsBody, len(inf.Data))
		for p, stats := range inf.Data {
			if stats == nil {
				continue
			}
			resp.Platforms[string(p)] = PlatformStatsBody{TotalFollowers: stats.TotalFollowers, Handle: stats.Handle}
		}
	}
	resp.AvatarColor = color.Placeholder(inf.ID)
	if inf.HasAvatar() {
		resp.AvatarURL = "/api/v1/influencers/" + inf.ID + "/avatar"
	}
	return resp
}

func toInfluencerResponses(infs []*domain.Influencer) []InfluencerResponse {
	out := make([]InfluencerResponse, len(infs))
	for i, inf := range infs {
		out[i] = toInfluencerResponse(inf)
	}
	return out
}

func platformStats(in map[string]PlatformStatsBody) map[discovery.Platform]*discovery.PlatformStats {
	if in == nil {
		return nil
	}
	out := make(map[discovery.Platform]*discovery.PlatformStats, len(in))
	for name, stats := range in {
		out[discovery.Platform(strings.ToLower(name))] = &discovery.PlatformStats{
			TotalFollowers: stats.TotalFollowers,
			Handle:         stats.Handle,
		}
	}
	return out
}

func (b CreateInfluencerBody) toServiceRequest() service.CreateInfluencerRequest {
	return service.CreateInfluencerRequest{
		Slug:           b.Slug,
		Name:           b.Name,
		Category:       b.Category,
		Gender:         b.Gender,
		Age:            b.Age,
		Country:        b.Country,
		State:          b.State,
		City:           b.City,
		Niche:          b.Niche,
		EngagementRate: b.EngagementRate,
		Data:           platformStats(b.Platforms),
		Bio:            b.Bio,
		BioHTML:        b.BioHTML,
		PricePerPost:   b.PricePerPost,
		Currency:       b.Currency,
		UserID:         b.UserID,
	}
}

func (b UpdateInfluencerBody) toServiceRequest() service.UpdateInfluencerRequest {
	return service.UpdateInfluencerRequest{
		Name:           b.Name,
		Category:       b.Category,
		Gender:         b.Gender,
		Age:            b.Age,
		Country:        b.Country,
		State:          b.State,
		City:           b.City,
		Niche:          b.Niche,
		EngagementRate: b.EngagementRate,
		Data:           platformStats(b.Platforms),
		Bio:            b.Bio,
		BioHTML:        b.BioHTML,
		PricePerPost:   b.PricePerPost,
		Currency:       b.Currency,
	}
}

// criteria converts query parameters into discovery criteria. Range bounds
// left out take the default for that range.
func (in *DiscoverInfluencersInput) criteria() (discovery.Criteria, error) {
	c := discovery.Criteria{
		Search:      in.Q,
		Country:     in.Country,
		State:       in.State,
		City:        in.City,
		Niche:       in.Niche,
		ContentType: in.ContentType,
		Gender:      in.Gender,
	}
	details := make(map[string]string)

	if in.AgeBracket != "" {
		b, err := discovery.ParseAgeBracket(in.AgeBracket)
		if err != nil {
			details["age_bracket"] = err.Error()
		}
		c.AgeBracket = b
	}

	engagement, err := parseRange(in.EngagementMin, in.EngagementMax, discovery.Range{Min: 0, Max: 100})
	if err != nil {
		details["engagement"] = err.Error()
	}
	c.Engagement = engagement

	followers, err := parseRange(in.FollowersMin, in.FollowersMax, discovery.DefaultFollowerRange())
	if err != nil {
		details["followers"] = err.Error()
	}
	c.Followers = followers

	for name := range strings.SplitSeq(in.Platforms, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := discovery.ParsePlatform(name)
		if err != nil {
			details["platforms"] = err.Error()
			break
		}
		c.Platforms = append(c.Platforms, p)
	}

	if len(details) > 0 {
		return c, domainerrors.ValidationWithDetails("invalid discovery criteria", details)
	}
	return c, nil
}

// parseRange returns nil when neither bound is given.
func parseRange(minStr, maxStr string, def discovery.Range) (*discovery.Range, error) {
	if minStr == "" && maxStr == "" {
		return nil, nil
	}
	r := def
	if minStr != "" {
		v, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, fmt.Errorf("min %q is not a number", minStr)
		}
		r.Min = v
	}
	if maxStr != "" {
		v, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return nil, fmt.Errorf("max %q is not a number", maxStr)
		}
		r.Max = v
	}
	return &r, nil
}

// isValidImageType checks if the content type is a valid image type.
// Handles content types with parameters (e.g., "image/jpeg; charset=utf-8").
func isValidImageType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// === Handlers ===

func (s *Server) handleDiscoverInfluencers(ctx context.Context, input *DiscoverInfluencersInput) (*DiscoverOutput, error) {
	criteria, err := input.criteria()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Discovery.Discover(ctx, criteria, input.Offset, input.Limit)
	if err != nil {
		return nil, err
	}

	return &DiscoverOutput{Body: DiscoverResponse{
		Items:   toInfluencerResponses(page.Items),
		Total:   page.Total,
		Offset:  page.Offset,
		Limit:   page.Limit,
		Summary: page.Summary,
	}}, nil
}

func (s *Server) handleInfluencerFacets(ctx context.Context, _ *struct{}) (*FacetsOutput, error) {
	summary, err := s.services.Discovery.Facets(ctx)
	if err != nil {
		return nil, err
	}
	return &FacetsOutput{Body: summary}, nil
}

func (s *Server) handleGetInfluencer(ctx context.Context, input *InfluencerIDInput) (*InfluencerOutput, error) {
	inf, err := s.services.Influencers.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &InfluencerOutput{Body: toInfluencerResponse(inf)}, nil
}

func (s *Server) handleCreateInfluencer(ctx context.Context, input *CreateInfluencerInput) (*InfluencerOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	inf, err := s.services.Influencers.Create(ctx, user, input.Body.toServiceRequest())
	if err != nil {
		return nil, err
	}
	return &InfluencerOutput{Body: toInfluencerResponse(inf)}, nil
}

func (s *Server) handleUpdateInfluencer(ctx context.Context, input *UpdateInfluencerInput) (*InfluencerOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	inf, err := s.services.Influencers.Update(ctx, user, input.ID, input.Body.toServiceRequest())
	if err != nil {
		return nil, err
	}
	return &InfluencerOutput{Body: toInfluencerResponse(inf)}, nil
}

func (s *Server) handleDeleteInfluencer(ctx context.Context, input *AuthenticatedInfluencerInput) (*MessageOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Influencers.Delete(ctx, user, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Influencer deleted"}}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*InfluencerOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !isValidImageType(input.ContentType) {
		return nil, domainerrors.Validation(
			fmt.Sprintf("invalid image type '%s', must be image/jpeg, image/png, or image/webp", input.ContentType),
		)
	}
	if len(input.RawBody) == 0 {
		return nil, domainerrors.Validation("image body is empty")
	}

	inf, err := s.services.Influencers.UploadAvatar(ctx, user, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &InfluencerOutput{Body: toInfluencerResponse(inf)}, nil
}

// handleGetAvatar serves the avatar bytes with an ETag so clients can
// revalidate with If-None-Match.
func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	avatar, err := s.services.Influencers.Avatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("ETag", avatar.ETag)
	w.Header().Set("Cache-Control", CacheOneDay)
	if avatar.BlurHash != "" {
		w.Header().Set("X-BlurHash", avatar.BlurHash)
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == avatar.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(avatar.Data)))
	if _, err := w.Write(avatar.Data); err != nil {
		s.logger.Debug("avatar write failed", "error", err)
	}
}
