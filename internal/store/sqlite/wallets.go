package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/store"
)

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

const transactionColumns = `id, wallet_id, kind, amount, balance_after, order_id, reference, created_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanWallet(scanner interface{ Scan(dest ...any) error }) (*domain.Wallet, error) {
	var (
		w         domain.Wallet
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanTransaction(scanner interface{ Scan(dest ...any) error }) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		kind      string
		orderID   sql.NullString
		reference sql.NullString
		createdAt string
	)
	err := scanner.Scan(&t.ID, &t.WalletID, &kind, &t.Amount, &t.BalanceAfter, &orderID, &reference, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Kind = domain.TransactionKind(kind)
	t.OrderID = orderID.String
	t.Reference = reference.String
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// walletFor loads the user's wallet, creating an empty one on first use.
func walletFor(ctx context.Context, q querier, userID, currency string, now time.Time) (*domain.Wallet, error) {
	w, err := scanWallet(q.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = ?`, userID))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	walletID, err := id.Generate(id.PrefixWallet)
	if err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO wallets (`+walletColumns+`) VALUES (?, ?, 0, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		walletID, userID, currency, formatTime(now), formatTime(now))
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("wallet owner %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return scanWallet(q.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = ?`, userID))
}

// GetOrCreateWallet returns the user's wallet, creating an empty one in
// currency if the user has none yet.
func (s *Store) GetOrCreateWallet(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	return walletFor(ctx, s.db, userID, currency, time.Now())
}

// ApplyTransactions applies moves in one database transaction and records a
// ledger entry per move. If any wallet would go negative nothing is applied
// and store.ErrInsufficientFunds is returned.
func (s *Store) ApplyTransactions(ctx context.Context, moves []store.WalletMove) ([]*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out, err := applyMoves(ctx, tx, moves, time.Now())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func applyMoves(ctx context.Context, tx querier, moves []store.WalletMove, now time.Time) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(moves))
	for _, move := range moves {
		w, err := walletFor(ctx, tx, move.UserID, move.Currency, now)
		if err != nil {
			return nil, err
		}
		if move.Currency != "" && move.Currency != w.Currency {
			return nil, fmt.Errorf("wallet %s holds %s, not %s: %w", w.ID, w.Currency, move.Currency, store.ErrInvalidInput)
		}

		balance := w.Balance + move.Amount
		if balance < 0 {
			return nil, store.ErrInsufficientFunds
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE wallets SET balance = ?, updated_at = ? WHERE id = ?`,
			balance, formatTime(now), w.ID); err != nil {
			return nil, err
		}

		txnID, err := id.Generate(id.PrefixTransaction)
		if err != nil {
			return nil, err
		}
		t := &domain.Transaction{
			ID:           txnID,
			WalletID:     w.ID,
			Kind:         move.Kind,
			Amount:       move.Amount,
			BalanceAfter: balance,
			OrderID:      move.OrderID,
			Reference:    move.Reference,
			CreatedAt:    now,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.WalletID, string(t.Kind), t.Amount, t.BalanceAfter,
			nullString(t.OrderID), nullString(t.Reference), formatTime(t.CreatedAt))
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("transaction reference %q: %w", t.Reference, store.ErrAlreadyExists)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ListTransactions returns a wallet's ledger, newest first. A positive limit caps the result.
func (s *Store) ListTransactions(ctx context.Context, walletID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE wallet_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		walletID, limit)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTransaction)
}

// TotalWalletBalance sums every wallet's balance.
func (s *Store) TotalWalletBalance(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance), 0) FROM wallets`).Scan(&total)
	return total, err
}
