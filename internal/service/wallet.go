package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

const defaultTransactionLimit = 100

// WalletService manages balances. Every balance change goes through
// store.ApplyTransactions or store.SettleOrder, so a batch of moves commits
// or fails together.
type WalletService struct {
	store    store.Store
	emitter  store.EventEmitter
	currency string
	logger   *slog.Logger
}

// NewWalletService creates a wallet service. New wallets are opened in currency.
func NewWalletService(store store.Store, emitter store.EventEmitter, currency string, logger *slog.Logger) *WalletService {
	return &WalletService{store: store, emitter: emitter, currency: currency, logger: logger}
}

// TopUpRequest credits the caller's wallet. Reference makes the top-up
// idempotent; one is generated when empty.
type TopUpRequest struct {
	Amount    int64  `json:"amount" validate:"gt=0"`
	Reference string `json:"reference,omitempty" validate:"omitempty,uuid"`
}

// TopUpResponse is the wallet after a top-up and the ledger entry it wrote.
type TopUpResponse struct {
	Wallet      *domain.Wallet      `json:"wallet"`
	Transaction *domain.Transaction `json:"transaction"`
}

// Currency returns the currency new wallets are opened in.
func (s *WalletService) Currency() string { return s.currency }

// Get returns the actor's wallet, creating it on first use.
func (s *WalletService) Get(ctx context.Context, actor *domain.User) (*domain.Wallet, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return s.store.GetOrCreateWallet(ctx, actor.ID, s.currency)
}

// TopUp credits amount to the actor's wallet.
func (s *WalletService) TopUp(ctx context.Context, actor *domain.User, req TopUpRequest) (*TopUpResponse, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.Reference == "" {
		req.Reference = uuid.NewString()
	}

	txns, err := s.apply(ctx, store.WalletMove{
		UserID:    actor.ID,
		Currency:  s.currency,
		Kind:      domain.TxTopUp,
		Amount:    req.Amount,
		Reference: "topup:" + req.Reference,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("top-up reference already used")
		}
		return nil, err
	}

	wallet, err := s.store.GetOrCreateWallet(ctx, actor.ID, s.currency)
	if err != nil {
		return nil, err
	}
	s.logger.Info("wallet topped up", "user_id", actor.ID, "amount", req.Amount)
	return &TopUpResponse{Wallet: wallet, Transaction: txns[0]}, nil
}

// Transactions lists the actor's ledger, newest first.
func (s *WalletService) Transactions(ctx context.Context, actor *domain.User, limit int) ([]*domain.Transaction, error) {
	wallet, err := s.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	return s.store.ListTransactions(ctx, wallet.ID, limit)
}

// apply commits moves atomically and emits wallet.updated to every owner
// whose balance changed.
func (s *WalletService) apply(ctx context.Context, moves ...store.WalletMove) ([]*domain.Transaction, error) {
	txns, err := s.store.ApplyTransactions(ctx, moves)
	return s.committed(ctx, moves, txns, err)
}

// settle saves order's move from status from together with moves. A status
// conflict is returned as store.ErrConflict and nothing is applied.
func (s *WalletService) settle(ctx context.Context, order *domain.Order, from domain.OrderStatus, moves ...store.WalletMove) ([]*domain.Transaction, error) {
	txns, err := s.store.SettleOrder(ctx, order, from, moves)
	return s.committed(ctx, moves, txns, err)
}

func (s *WalletService) committed(ctx context.Context, moves []store.WalletMove, txns []*domain.Transaction, err error) ([]*domain.Transaction, error) {
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, domainerrors.InsufficientFunds("wallet balance does not cover this payment")
		}
		return nil, fmt.Errorf("apply wallet moves: %w", err)
	}

	seen := make(map[string]bool, len(moves))
	for _, m := range moves {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		w, err := s.store.GetOrCreateWallet(ctx, m.UserID, s.currency)
		if err != nil {
			s.logger.Warn("failed to load wallet for event", "user_id", m.UserID, "error", err)
			continue
		}
		s.emitter.Emit(sse.NewWalletUpdatedEvent(w))
	}
	return txns, nil
}
