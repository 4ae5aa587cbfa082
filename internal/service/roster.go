package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/normalize"
	"github.com/reachlyapp/reachly-server/internal/roster"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// RosterService upserts roster files into the store, keyed by slug.
type RosterService struct {
	store    store.Store
	search   *SearchService
	avatars  *images.Fetcher
	emitter  store.EventEmitter
	currency string
	workers  int
	logger   *slog.Logger
}

var _ roster.Importer = (*RosterService)(nil)

// RosterOptions configures a RosterService. Avatars and Search may be nil.
type RosterOptions struct {
	Avatars  *images.Fetcher
	Search   *SearchService
	Emitter  store.EventEmitter
	Currency string
	Workers  int
	Logger   *slog.Logger
}

// NewRosterService creates a roster importer.
func NewRosterService(st store.Store, opts RosterOptions) *RosterService {
	if opts.Emitter == nil {
		opts.Emitter = store.NewNoopEmitter()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &RosterService{
		store:    st,
		search:   opts.Search,
		avatars:  opts.Avatars,
		emitter:  opts.Emitter,
		currency: opts.Currency,
		workers:  max(opts.Workers, 1),
		logger:   opts.Logger,
	}
}

// Import validates and upserts entries with bounded concurrency. Invalid
// entries are reported in the result and do not stop the others; only
// context cancellation or a store failure aborts the import.
func (s *RosterService) Import(ctx context.Context, source string, entries []roster.Entry) (*roster.Result, error) {
	start := time.Now()
	result := &roster.Result{Source: source}
	var mu sync.Mutex

	fail := func(i int, e *roster.Entry, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Failed++
		result.Errors = append(result.Errors, roster.EntryError{Index: i, Name: e.Name, Message: err.Error()})
	}

	seen := make(map[string]int, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range entries {
		entry := &entries[i]
		if err := entry.Validate(); err != nil {
			fail(i, entry, err)
			continue
		}
		slug := normalize.Slugify(cmp.Or(entry.Slug, entry.Name))
		if first, dup := seen[slug]; dup {
			fail(i, entry, fmt.Errorf("slug %q already used by entry %d", slug, first))
			continue
		}
		seen[slug] = i

		g.Go(func() error {
			created, err := s.upsert(gctx, slug, entry)
			if err != nil {
				var domainErr *domainerrors.Error
				if !errors.As(err, &domainErr) {
					return fmt.Errorf("entry %d (%s): %w", i, entry.Name, err)
				}
				fail(i, entry, err)
				return nil
			}
			mu.Lock()
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	if s.search != nil && result.Imported() > 0 {
		if err := s.search.EnsureIndexed(ctx); err != nil {
			s.logger.Warn("failed to refresh search index after import", "error", err)
		}
	}

	s.logger.Info("roster imported",
		"source", source,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	s.emitter.Emit(sse.NewRosterImportedEvent(sse.RosterImportedEventData{
		Source:   source,
		Created:  result.Created,
		Updated:  result.Updated,
		Failed:   result.Failed,
		Duration: result.Duration.String(),
	}))
	return result, nil
}

// upsert writes one entry and reports whether a new profile was created.
func (s *RosterService) upsert(ctx context.Context, slug string, e *roster.Entry) (bool, error) {
	ownerID, err := s.owner(ctx, e.OwnerEmail)
	if err != nil {
		return false, err
	}

	now := time.Now()
	inf, err := s.store.GetInfluencerBySlug(ctx, slug)
	created := errors.Is(err, store.ErrNotFound)
	switch {
	case created:
		influencerID, err := id.Generate(id.PrefixInfluencer)
		if err != nil {
			return false, err
		}
		inf = &domain.Influencer{Slug: slug, CreatedAt: now}
		inf.ID = influencerID
	case err != nil:
		return false, err
	}

	record := e.Record
	record.ID = inf.ID
	record.Name = normalize.Text(record.Name)
	record.Category = normalize.Text(record.Category)
	record.Gender = normalize.Text(record.Gender)
	record.Country = cleanPlace(record.Country)
	record.State = cleanPlace(record.State)
	record.City = cleanPlace(record.City)
	if record.Niche != nil {
		record.Niche = niche(record.Niche.Name)
	}
	inf.Record = record

	inf.Bio = bio(e.Bio, e.BioHTML)
	inf.PricePerPost = e.PricePerPost
	inf.Currency = normalize.Currency(e.Currency)
	if inf.Currency == "" {
		inf.Currency = s.currency
	}
	if ownerID != "" {
		inf.UserID = ownerID
	}
	inf.UpdatedAt = now

	if e.AvatarURL != "" && s.avatars != nil {
		if res, err := s.avatars.Fetch(ctx, inf.ID, e.AvatarURL); err != nil {
			s.logger.Warn("failed to fetch avatar", "slug", slug, "url", e.AvatarURL, "error", err)
		} else {
			inf.AvatarPath = res.Path
			inf.AvatarBlurHash = res.BlurHash
		}
	}

	if created {
		err = s.store.CreateInfluencer(ctx, inf)
	} else {
		err = s.store.UpdateInfluencer(ctx, inf)
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, domainerrors.AlreadyExistsf("slug %q was taken during import", slug)
	}
	return created, err
}

func (s *RosterService) owner(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.Validationf("no account for owner_email %q", email)
		}
		return "", err
	}
	if !user.IsInfluencer() {
		return "", domainerrors.Validationf("owner_email %q is not an influencer account", email)
	}
	return user.ID, nil
}

func cleanPlace(p *discovery.Place) *discovery.Place {
	if p == nil {
		return nil
	}
	return place(p.Name)
}
