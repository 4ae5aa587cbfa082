package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/normalize"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// maxSlugAttempts bounds the numeric suffixes tried for a taken slug.
const maxSlugAttempts = 50

// InfluencerService manages influencer profiles and their avatars. The store
// keeps the search index in step with profile writes.
type InfluencerService struct {
	store    store.Store
	kv       *store.KV
	avatars  *images.Processor
	emitter  store.EventEmitter
	currency string
	logger   *slog.Logger
}

// NewInfluencerService creates a new influencer service. Profiles without a
// currency are priced in currency.
func NewInfluencerService(
	store store.Store,
	kv *store.KV,
	avatars *images.Processor,
	emitter store.EventEmitter,
	currency string,
	logger *slog.Logger,
) *InfluencerService {
	return &InfluencerService{
		store:    store,
		kv:       kv,
		avatars:  avatars,
		emitter:  emitter,
		currency: currency,
		logger:   logger,
	}
}

// CreateInfluencerRequest describes a new profile. BioHTML, when set, is
// converted to markdown and replaces Bio.
type CreateInfluencerRequest struct {
	Slug           string                                           `json:"slug,omitempty" validate:"max=80"`
	Name           string                                           `json:"name" validate:"required,max=200"`
	Category       string                                           `json:"category,omitempty" validate:"max=100"`
	Gender         string                                           `json:"gender,omitempty" validate:"max=50"`
	Age            *int                                             `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Country        string                                           `json:"country,omitempty" validate:"max=100"`
	State          string                                           `json:"state,omitempty" validate:"max=100"`
	City           string                                           `json:"city,omitempty" validate:"max=100"`
	Niche          string                                           `json:"niche,omitempty" validate:"max=100"`
	EngagementRate *float64                                         `json:"engagement_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Data           map[discovery.Platform]*discovery.PlatformStats `json:"data,omitempty" validate:"dive,keys,platform,endkeys,required"`
	Bio            string                                           `json:"bio,omitempty" validate:"max=10000"`
	BioHTML        string                                           `json:"bio_html,omitempty" validate:"max=20000"`
	PricePerPost   int64                                            `json:"price_per_post" validate:"gte=0"`
	Currency       string                                           `json:"currency,omitempty" validate:"omitempty,currency"`
	// UserID links the profile to an influencer account. Only admins may set
	// it; an influencer creating a profile always owns it.
	UserID string `json:"user_id,omitempty"`
}

// UpdateInfluencerRequest changes the fields that are set.
type UpdateInfluencerRequest struct {
	Name           *string                                          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category       *string                                          `json:"category,omitempty" validate:"omitempty,max=100"`
	Gender         *string                                          `json:"gender,omitempty" validate:"omitempty,max=50"`
	Age            *int                                             `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Country        *string                                          `json:"country,omitempty" validate:"omitempty,max=100"`
	State          *string                                          `json:"state,omitempty" validate:"omitempty,max=100"`
	City           *string                                          `json:"city,omitempty" validate:"omitempty,max=100"`
	Niche          *string                                          `json:"niche,omitempty" validate:"omitempty,max=100"`
	EngagementRate *float64                                         `json:"engagement_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Data           map[discovery.Platform]*discovery.PlatformStats `json:"data,omitempty" validate:"omitempty,dive,keys,platform,endkeys,required"`
	Bio            *string                                          `json:"bio,omitempty" validate:"omitempty,max=10000"`
	BioHTML        *string                                          `json:"bio_html,omitempty" validate:"omitempty,max=20000"`
	PricePerPost   *int64                                           `json:"price_per_post,omitempty" validate:"omitempty,gte=0"`
	Currency       *string                                          `json:"currency,omitempty" validate:"omitempty,currency"`
}

// Avatar is a stored avatar image.
type Avatar struct {
	Data        []byte
	ContentType string
	ETag        string
	BlurHash    string
}

// Create adds a profile. Admins may create any profile; influencers create
// profiles they own.
func (s *InfluencerService) Create(ctx context.Context, actor *domain.User, req CreateInfluencerRequest) (*domain.Influencer, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.IsInfluencer() {
		return nil, domainerrors.Forbidden("only influencers and admins can create profiles")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkPlatformStats(req.Data); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if actor.IsAdmin() {
		ownerID = req.UserID
		if ownerID != "" {
			if err := s.checkOwner(ctx, ownerID); err != nil {
				return nil, err
			}
		}
	}

	influencerID, err := id.Generate(id.PrefixInfluencer)
	if err != nil {
		return nil, fmt.Errorf("generate influencer ID: %w", err)
	}

	slugBase := req.Slug
	if slugBase == "" {
		slugBase = req.Name
	}
	slug, err := s.uniqueSlug(ctx, slugBase, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inf := &domain.Influencer{
		Record: discovery.Record{
			ID:             influencerID,
			Name:           normalize.Text(req.Name),
			Category:       normalize.Text(req.Category),
			Gender:         normalize.Text(req.Gender),
			Age:            req.Age,
			Country:        place(req.Country),
			State:          place(req.State),
			City:           place(req.City),
			Niche:          niche(req.Niche),
			EngagementRate: req.EngagementRate,
			Data:           req.Data,
		},
		UserID:       ownerID,
		Slug:         slug,
		Bio:          bio(req.Bio, req.BioHTML),
		PricePerPost: req.PricePerPost,
		Currency:     s.currencyOr(req.Currency),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateInfluencer(ctx, inf); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("slug %q is taken", inf.Slug)
		}
		return nil, fmt.Errorf("create influencer: %w", err)
	}

	s.logger.Info("influencer created", "influencer_id", inf.ID, "slug", inf.Slug, "created_by", actor.ID)
	s.emitter.Emit(sse.NewInfluencerCreatedEvent(inf))
	return inf, nil
}

// Get returns a live profile by ID or slug.
func (s *InfluencerService) Get(ctx context.Context, idOrSlug string) (*domain.Influencer, error) {
	var (
		inf *domain.Influencer
		err error
	)
	if id.HasPrefix(idOrSlug, id.PrefixInfluencer) {
		inf, err = s.store.GetInfluencer(ctx, idOrSlug)
	}
	if inf == nil {
		inf, err = s.store.GetInfluencerBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFound(err, "influencer")
	}
	return inf, nil
}

// Update applies the set fields of req to a profile the actor manages.
func (s *InfluencerService) Update(ctx context.Context, actor *domain.User, idOrSlug string, req UpdateInfluencerRequest) (*domain.Influencer, error) {
	inf, err := s.managed(ctx, actor, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkPlatformStats(req.Data); err != nil {
		return nil, err
	}

	if req.Name != nil {
		inf.Name = normalize.Text(*req.Name)
	}
	if req.Category != nil {
		inf.Category = normalize.Text(*req.Category)
	}
	if req.Gender != nil {
		inf.Gender = normalize.Text(*req.Gender)
	}
	if req.Age != nil {
		inf.Age = req.Age
	}
	if req.Country != nil {
		inf.Country = place(*req.Country)
	}
	if req.State != nil {
		inf.State = place(*req.State)
	}
	if req.City != nil {
		inf.City = place(*req.City)
	}
	if req.Niche != nil {
		inf.Niche = niche(*req.Niche)
	}
	if req.EngagementRate != nil {
		inf.EngagementRate = req.EngagementRate
	}
	if req.Data != nil {
		inf.Data = req.Data
	}
	switch {
	case req.BioHTML != nil:
		inf.Bio = bio("", *req.BioHTML)
	case req.Bio != nil:
		inf.Bio = bio(*req.Bio, "")
	}
	if req.PricePerPost != nil {
		inf.PricePerPost = *req.PricePerPost
	}
	if req.Currency != nil {
		inf.Currency = s.currencyOr(*req.Currency)
	}
	inf.UpdatedAt = time.Now()

	if err := s.store.UpdateInfluencer(ctx, inf); err != nil {
		return nil, notFound(err, "influencer")
	}

	s.logger.Info("influencer updated", "influencer_id", inf.ID, "updated_by", actor.ID)
	s.emitter.Emit(sse.NewInfluencerUpdatedEvent(inf))
	return inf, nil
}

// Delete soft-deletes a profile, drops it from every wishlist and removes
// its avatar.
func (s *InfluencerService) Delete(ctx context.Context, actor *domain.User, idOrSlug string) error {
	inf, err := s.managed(ctx, actor, idOrSlug)
	if err != nil {
		return err
	}

	if err := s.store.DeleteInfluencer(ctx, inf.ID); err != nil {
		return notFound(err, "influencer")
	}

	removed, err := s.kv.RemoveInfluencerFromWishlists(ctx, inf.ID)
	if err != nil {
		s.logger.Warn("failed to clean wishlists", "influencer_id", inf.ID, "error", err)
	}
	if inf.HasAvatar() {
		if err := s.avatars.Storage().Delete(inf.ID); err != nil {
			s.logger.Warn("failed to delete avatar", "influencer_id", inf.ID, "error", err)
		}
	}

	s.logger.Info("influencer deleted",
		"influencer_id", inf.ID,
		"deleted_by", actor.ID,
		"wishlist_entries_removed", removed,
	)
	s.emitter.Emit(sse.NewInfluencerDeletedEvent(inf.ID, time.Now()))
	return nil
}

// UploadAvatar stores an avatar for a profile the actor manages and records
// its blurhash placeholder.
func (s *InfluencerService) UploadAvatar(ctx context.Context, actor *domain.User, idOrSlug string, data []byte) (*domain.Influencer, error) {
	inf, err := s.managed(ctx, actor, idOrSlug)
	if err != nil {
		return nil, err
	}

	result, err := s.avatars.Process(inf.ID, data)
	if err != nil {
		return nil, err
	}
	if err := s.applyAvatar(ctx, inf, result); err != nil {
		return nil, err
	}

	s.logger.Info("avatar uploaded",
		"influencer_id", inf.ID,
		"format", result.Format,
		"size", result.Size,
	)
	s.emitter.Emit(sse.NewInfluencerUpdatedEvent(inf))
	return inf, nil
}

func (s *InfluencerService) applyAvatar(ctx context.Context, inf *domain.Influencer, result *images.Result) error {
	inf.AvatarPath = result.Path
	inf.AvatarBlurHash = result.BlurHash
	inf.UpdatedAt = time.Now()
	if err := s.store.UpdateInfluencer(ctx, inf); err != nil {
		return notFound(err, "influencer")
	}
	return nil
}

// Avatar returns a profile's stored avatar image.
func (s *InfluencerService) Avatar(ctx context.Context, idOrSlug string) (*Avatar, error) {
	inf, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !inf.HasAvatar() {
		return nil, domainerrors.NotFound("avatar not found")
	}
	data, err := s.avatars.Storage().Get(inf.ID)
	if err != nil {
		return nil, domainerrors.NotFound("avatar not found").WithCause(err)
	}
	return &Avatar{
		Data:        data,
		ContentType: http.DetectContentType(data),
		ETag:        strconv.Quote(images.HashBytes(data)),
		BlurHash:    inf.AvatarBlurHash,
	}, nil
}

// managed loads a live profile and checks the actor may edit it.
func (s *InfluencerService) managed(ctx context.Context, actor *domain.User, idOrSlug string) (*domain.Influencer, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	inf, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !inf.ManagedBy(actor) {
		return nil, domainerrors.Forbidden("you do not manage this profile")
	}
	return inf, nil
}

func (s *InfluencerService) checkOwner(ctx context.Context, userID string) error {
	owner, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.ValidationWithDetails("invalid owner", map[string]string{"user_id": "no such user"})
		}
		return err
	}
	if !owner.IsInfluencer() {
		return domainerrors.ValidationWithDetails("invalid owner", map[string]string{"user_id": "must be an influencer account"})
	}
	return nil
}

// uniqueSlug returns the slug of base, suffixed with -2, -3 and so on until
// no live profile other than selfID uses it.
func (s *InfluencerService) uniqueSlug(ctx context.Context, base, selfID string) (string, error) {
	root := normalize.Slugify(base)
	if root == "" {
		root = "influencer"
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := root
		if n > 1 {
			candidate = root + "-" + strconv.Itoa(n)
		}
		existing, err := s.store.GetInfluencerBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if existing.ID == selfID {
			return candidate, nil
		}
	}
	return "", domainerrors.AlreadyExistsf("no free slug for %q", base)
}

func (s *InfluencerService) currencyOr(c string) string {
	if c = normalize.Currency(c); c != "" {
		return c
	}
	return s.currency
}

// checkPlatformStats rejects negative follower counts.
func checkPlatformStats(data map[discovery.Platform]*discovery.PlatformStats) error {
	for p, stats := range data {
		if stats != nil && stats.TotalFollowers < 0 {
			return domainerrors.ValidationWithDetails("validation failed: data",
				map[string]string{"data": fmt.Sprintf("%s followers must not be negative", p)})
		}
	}
	return nil
}

func place(name string) *discovery.Place {
	if name = normalize.PlaceName(name); name == "" {
		return nil
	}
	return &discovery.Place{Name: name}
}

func niche(name string) *discovery.Niche {
	if name = normalize.PlaceName(name); name == "" {
		return nil
	}
	return &discovery.Niche{Name: name}
}

func bio(markdown, html string) string {
	if html != "" {
		return normalize.BioMarkdown(html)
	}
	return normalize.BioMarkdown(markdown)
}
