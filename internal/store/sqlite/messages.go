package sqlite

import (
	"context"
	"fmt"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

const messageColumns = `id, order_id, sender_id, body, created_at`

func scanMessage(scanner interface{ Scan(dest ...any) error }) (*domain.Message, error) {
	var (
		m         domain.Message
		createdAt string
	)
	if err := scanner.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.Body, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage appends a chat message to an order.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.OrderID, msg.SenderID, msg.Body, formatTime(msg.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("message %s: %w", msg.ID, store.ErrNotFound)
	}
	return err
}

// ListMessages returns an order's chat in the order it was written.
func (s *Store) ListMessages(ctx context.Context, orderID string) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE order_id = ? ORDER BY created_at ASC, rowid ASC`,
		orderID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMessage)
}
