package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/service"
)

func (s *Server) registerWalletRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getWallet",
		Method:      http.MethodGet,
		Path:        "/api/v1/wallet",
		Summary:     "Get wallet",
		Description: "Returns the caller's wallet, opening it on first use",
		Tags:        []string{"Wallet"},
		Security:    bearerSecurity,
	}, s.handleGetWallet)

	huma.Register(s.api, huma.Operation{
		OperationID: "topUpWallet",
		Method:      http.MethodPost,
		Path:        "/api/v1/wallet/topup",
		Summary:     "Top up wallet",
		Description: "Credits the wallet. Retrying with the same reference is rejected instead of crediting twice.",
		Tags:        []string{"Wallet"},
		Security:    bearerSecurity,
	}, s.handleTopUp)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWalletTransactions",
		Method:      http.MethodGet,
		Path:        "/api/v1/wallet/transactions",
		Summary:     "List transactions",
		Description: "Returns the wallet ledger, newest first",
		Tags:        []string{"Wallet"},
		Security:    bearerSecurity,
	}, s.handleListTransactions)
}

// === DTOs ===

// WalletOutput wraps a wallet for Huma.
type WalletOutput struct {
	Body *domain.Wallet
}

// TopUpRequest is the request body for a top-up.
type TopUpRequest struct {
	Amount    int64  `json:"amount" minimum:"1" doc:"Amount in minor units"`
	Reference string `json:"reference,omitempty" doc:"Client-generated UUID that makes the top-up idempotent"`
}

// TopUpInput wraps the top-up request for Huma.
type TopUpInput struct {
	AuthenticatedInput
	Body TopUpRequest
}

// TopUpOutput wraps the top-up result for Huma.
type TopUpOutput struct {
	Body *service.TopUpResponse
}

// ListTransactionsInput pages the ledger.
type ListTransactionsInput struct {
	AuthenticatedInput
	Limit int `query:"limit" minimum:"0" maximum:"500" doc:"Maximum entries (default 50)"`
}

// TransactionListResponse is the wallet ledger.
type TransactionListResponse struct {
	Items []*domain.Transaction `json:"items" doc:"Ledger entries, newest first"`
}

// TransactionListOutput wraps the ledger for Huma.
type TransactionListOutput struct {
	Body TransactionListResponse
}

// === Handlers ===

func (s *Server) handleGetWallet(ctx context.Context, _ *AuthenticatedInput) (*WalletOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	wallet, err := s.services.Wallets.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	return &WalletOutput{Body: wallet}, nil
}

func (s *Server) handleTopUp(ctx context.Context, input *TopUpInput) (*TopUpOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Wallets.TopUp(ctx, user, service.TopUpRequest{
		Amount:    input.Body.Amount,
		Reference: input.Body.Reference,
	})
	if err != nil {
		return nil, err
	}
	return &TopUpOutput{Body: resp}, nil
}

func (s *Server) handleListTransactions(ctx context.Context, input *ListTransactionsInput) (*TransactionListOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	txs, err := s.services.Wallets.Transactions(ctx, user, limit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	return &TransactionListOutput{Body: TransactionListResponse{Items: txs}}, nil
}
