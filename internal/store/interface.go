// Package store defines persistence for the marketplace. Relational records
// (users, influencers, orders, wallets, chat) live behind the Store interface,
// implemented by store/sqlite. Per-user collections that are only ever read by
// owner (wishlists, notifications) live in the badger-backed KV.
package store

import (
	"context"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

// Store defines the relational persistence operations.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
	CountUsersByRole(ctx context.Context) (map[domain.Role]int, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Influencers
	CreateInfluencer(ctx context.Context, inf *domain.Influencer) error
	GetInfluencer(ctx context.Context, id string) (*domain.Influencer, error)
	GetInfluencerBySlug(ctx context.Context, slug string) (*domain.Influencer, error)
	GetInfluencersByIDs(ctx context.Context, ids []string) ([]*domain.Influencer, error)
	UpdateInfluencer(ctx context.Context, inf *domain.Influencer) error
	DeleteInfluencer(ctx context.Context, id string) error
	ListInfluencers(ctx context.Context) ([]*domain.Influencer, error)
	CountInfluencers(ctx context.Context) (int, error)

	// Orders
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
	SettleOrder(ctx context.Context, order *domain.Order, from domain.OrderStatus, moves []WalletMove) ([]*domain.Transaction, error)
	ListOrdersForBusiness(ctx context.Context, businessID string) ([]*domain.Order, error)
	ListOrdersForInfluencer(ctx context.Context, influencerID string) ([]*domain.Order, error)
	OrderStats(ctx context.Context) (*OrderStats, error)

	// Wallets
	GetOrCreateWallet(ctx context.Context, userID, currency string) (*domain.Wallet, error)
	ApplyTransactions(ctx context.Context, moves []WalletMove) ([]*domain.Transaction, error)
	ListTransactions(ctx context.Context, walletID string, limit int) ([]*domain.Transaction, error)
	TotalWalletBalance(ctx context.Context) (int64, error)

	// Messages
	CreateMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, orderID string) ([]*domain.Message, error)
}

// WalletMove is one signed balance change. ApplyTransactions applies a batch
// atomically and fails the whole batch if any wallet would go negative.
type WalletMove struct {
	UserID    string
	Currency  string
	Kind      domain.TransactionKind
	Amount    int64
	OrderID   string
	Reference string
}

// OrderStats aggregates orders for the admin dashboard.
type OrderStats struct {
	ByStatus map[domain.OrderStatus]int `json:"by_status"`
	// GrossCompleted sums prices of completed orders.
	GrossCompleted int64 `json:"gross_completed"`
	// Escrowed sums prices of pending and accepted orders.
	Escrowed int64 `json:"escrowed"`
}
