package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// orderColumns must match the scan order in scanOrder.
const orderColumns = `id, business_id, influencer_id, platform, brief, price, currency,
	status, created_at, updated_at, completed_at`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o           domain.Order
		platform    string
		status      string
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
	)
	err := scanner.Scan(
		&o.ID,
		&o.BusinessID,
		&o.InfluencerID,
		&platform,
		&o.Brief,
		&o.Price,
		&o.Currency,
		&status,
		&createdAt,
		&updatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Platform = discovery.Platform(platform)
	o.Status = domain.OrderStatus(status)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if o.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts a new order.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.BusinessID,
		order.InfluencerID,
		string(order.Platform),
		order.Brief,
		order.Price,
		order.Currency,
		string(order.Status),
		formatTime(order.CreatedAt),
		formatTime(order.UpdatedAt),
		nullTimeString(order.CompletedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("order %s references a missing account or profile: %w", order.ID, store.ErrInvalidInput)
	}
	return err
}

// GetOrder retrieves an order by ID.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return o, err
}

// UpdateOrderStatus writes the order's status only if the stored status is
// still from. A concurrent transition makes it return store.ErrConflict.
func (s *Store) UpdateOrderStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	return updateOrderStatus(ctx, s.db, order, from)
}

// SettleOrder writes the order's status like UpdateOrderStatus and applies
// moves in the same database transaction. Either both commit or neither does.
func (s *Store) SettleOrder(ctx context.Context, order *domain.Order, from domain.OrderStatus, moves []store.WalletMove) ([]*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := updateOrderStatus(ctx, tx, order, from); err != nil {
		return nil, err
	}
	txns, err := applyMoves(ctx, tx, moves, order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return txns, nil
}

func updateOrderStatus(ctx context.Context, q querier, order *domain.Order, from domain.OrderStatus) error {
	result, err := q.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(order.Status),
		formatTime(order.UpdatedAt),
		nullTimeString(order.CompletedAt),
		order.ID,
		string(from),
	)
	if err != nil {
		return err
	}
	err = checkAffected(result)
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	var exists int
	if err := q.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, order.ID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("order %s is no longer %s: %w", order.ID, from, store.ErrConflict)
}

// ListOrdersForBusiness returns the orders a business placed, newest first.
func (s *Store) ListOrdersForBusiness(ctx context.Context, businessID string) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE business_id = ? ORDER BY created_at DESC, id DESC`,
		businessID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanOrder)
}

// ListOrdersForInfluencer returns the orders placed with a profile, newest first.
func (s *Store) ListOrdersForInfluencer(ctx context.Context, influencerID string) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE influencer_id = ? ORDER BY created_at DESC, id DESC`,
		influencerID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanOrder)
}

// OrderStats aggregates order counts and money totals.
func (s *Store) OrderStats(ctx context.Context) (*store.OrderStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(price), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &store.OrderStats{ByStatus: make(map[domain.OrderStatus]int)}
	for rows.Next() {
		var (
			status string
			count  int
			total  int64
		)
		if err := rows.Scan(&status, &count, &total); err != nil {
			return nil, err
		}
		st := domain.OrderStatus(status)
		stats.ByStatus[st] = count
		switch st {
		case domain.OrderCompleted:
			stats.GrossCompleted += total
		case domain.OrderPending, domain.OrderAccepted:
			stats.Escrowed += total
		}
	}
	return stats, rows.Err()
}
