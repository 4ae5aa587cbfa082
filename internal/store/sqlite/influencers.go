package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// influencerColumns must match the scan order in scanInfluencer.
const influencerColumns = `id, user_id, slug, name, category, gender, age,
	country, state, city, niche, engagement_rate, platform_data,
	bio, price_per_post, currency, avatar_path, avatar_blurhash,
	created_at, updated_at, deleted_at`

func scanInfluencer(scanner interface{ Scan(dest ...any) error }) (*domain.Influencer, error) {
	var (
		inf          domain.Influencer
		userID       sql.NullString
		age          sql.NullInt64
		country      sql.NullString
		state        sql.NullString
		city         sql.NullString
		niche        sql.NullString
		engagement   sql.NullFloat64
		platformData string
		avatarPath   sql.NullString
		blurHash     sql.NullString
		createdAt    string
		updatedAt    string
		deletedAt    sql.NullString
	)
	err := scanner.Scan(
		&inf.ID,
		&userID,
		&inf.Slug,
		&inf.Name,
		&inf.Category,
		&inf.Gender,
		&age,
		&country,
		&state,
		&city,
		&niche,
		&engagement,
		&platformData,
		&inf.Bio,
		&inf.PricePerPost,
		&inf.Currency,
		&avatarPath,
		&blurHash,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	inf.UserID = userID.String
	inf.AvatarPath = avatarPath.String
	inf.AvatarBlurHash = blurHash.String

	// Absent columns stay nil so the discovery filter sees a sparse record.
	if age.Valid {
		v := int(age.Int64)
		inf.Age = &v
	}
	if engagement.Valid {
		v := engagement.Float64
		inf.EngagementRate = &v
	}
	inf.Country = place(country)
	inf.State = place(state)
	inf.City = place(city)
	if niche.Valid {
		inf.Niche = &discovery.Niche{Name: niche.String}
	}

	if platformData != "" && platformData != "{}" {
		if err := json.Unmarshal([]byte(platformData), &inf.Data); err != nil {
			return nil, fmt.Errorf("decode platform data for %s: %w", inf.ID, err)
		}
	}

	if inf.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inf.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if inf.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	return &inf, nil
}

func place(s sql.NullString) *discovery.Place {
	if !s.Valid {
		return nil
	}
	return &discovery.Place{Name: s.String}
}

func placeName(p *discovery.Place) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.Name, Valid: true}
}

// influencerArgs returns the values for every column after id, in
// influencerColumns order.
func influencerArgs(inf *domain.Influencer) ([]any, error) {
	data := []byte("{}")
	if len(inf.Data) > 0 {
		var err error
		if data, err = json.Marshal(inf.Data); err != nil {
			return nil, fmt.Errorf("encode platform data: %w", err)
		}
	}

	var age sql.NullInt64
	if inf.Age != nil {
		age = sql.NullInt64{Int64: int64(*inf.Age), Valid: true}
	}
	var engagement sql.NullFloat64
	if inf.EngagementRate != nil {
		engagement = sql.NullFloat64{Float64: *inf.EngagementRate, Valid: true}
	}
	var niche sql.NullString
	if inf.Niche != nil {
		niche = sql.NullString{String: inf.Niche.Name, Valid: true}
	}

	return []any{
		nullString(inf.UserID),
		inf.Slug,
		inf.Name,
		inf.Category,
		inf.Gender,
		age,
		placeName(inf.Country),
		placeName(inf.State),
		placeName(inf.City),
		niche,
		engagement,
		string(data),
		inf.Bio,
		inf.PricePerPost,
		inf.Currency,
		nullString(inf.AvatarPath),
		nullString(inf.AvatarBlurHash),
		formatTime(inf.CreatedAt),
		formatTime(inf.UpdatedAt),
		nullTimeString(inf.DeletedAt),
	}, nil
}

// CreateInfluencer inserts a profile and indexes it for search.
// Returns store.ErrAlreadyExists if the ID or slug is taken.
func (s *Store) CreateInfluencer(ctx context.Context, inf *domain.Influencer) error {
	args, err := influencerArgs(inf)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO influencers (`+influencerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{inf.ID}, args...)...,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("influencer %s: %w", inf.ID, store.ErrInvalidInput)
	}
	if err != nil {
		return err
	}

	s.index(ctx, inf)
	return nil
}

// GetInfluencer retrieves a live profile by ID.
func (s *Store) GetInfluencer(ctx context.Context, id string) (*domain.Influencer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE id = ? AND deleted_at IS NULL`, id)
	inf, err := scanInfluencer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inf, err
}

// GetInfluencerBySlug retrieves a live profile by slug.
func (s *Store) GetInfluencerBySlug(ctx context.Context, slug string) (*domain.Influencer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE slug = ? AND deleted_at IS NULL`, slug)
	inf, err := scanInfluencer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inf, err
}

// GetInfluencersByIDs returns the live profiles among ids, in the order of ids.
// Missing or deleted IDs are skipped.
func (s *Store) GetInfluencersByIDs(ctx context.Context, ids []string) ([]*domain.Influencer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers
		WHERE deleted_at IS NULL AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	found, err := collectRows(rows, scanInfluencer)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Influencer, len(found))
	for _, inf := range found {
		byID[inf.ID] = inf
	}
	out := make([]*domain.Influencer, 0, len(found))
	for _, id := range ids {
		if inf, ok := byID[id]; ok {
			out = append(out, inf)
			delete(byID, id)
		}
	}
	return out, nil
}

// UpdateInfluencer performs a full row update on a live profile and reindexes it.
func (s *Store) UpdateInfluencer(ctx context.Context, inf *domain.Influencer) error {
	args, err := influencerArgs(inf)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE influencers SET
			user_id = ?, slug = ?, name = ?, category = ?, gender = ?, age = ?,
			country = ?, state = ?, city = ?, niche = ?, engagement_rate = ?, platform_data = ?,
			bio = ?, price_per_post = ?, currency = ?, avatar_path = ?, avatar_blurhash = ?,
			created_at = ?, updated_at = ?, deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		append(args, inf.ID)...,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	s.index(ctx, inf)
	return nil
}

// DeleteInfluencer soft-deletes a profile and drops it from the search index.
func (s *Store) DeleteInfluencer(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	result, err := s.db.ExecContext(ctx,
		`UPDATE influencers SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	if err := s.searchIndexer.DeleteInfluencer(ctx, id); err != nil {
		s.logger.Warn("failed to remove influencer from search index", "influencer_id", id, "error", err)
	}
	return nil
}

// ListInfluencers returns every live profile in creation order. Discovery
// filters this list, so the order is the order results are shown in.
func (s *Store) ListInfluencers(ctx context.Context) ([]*domain.Influencer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers
		WHERE deleted_at IS NULL ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanInfluencer)
}

// CountInfluencers returns the number of live profiles.
func (s *Store) CountInfluencers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM influencers WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

// index pushes a profile to the search index. Index failures are logged, not
// returned: the row is already committed and a rebuild repairs the index.
func (s *Store) index(ctx context.Context, inf *domain.Influencer) {
	if err := s.searchIndexer.IndexInfluencer(ctx, inf); err != nil {
		s.logger.Warn("failed to index influencer", "influencer_id", inf.ID, "error", err)
	}
}
