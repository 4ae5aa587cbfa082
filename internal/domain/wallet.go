package domain

import "time"

// Wallet holds a user's balance in minor currency units.
type Wallet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TxTopUp      TransactionKind = "topup"
	TxEscrowHold TransactionKind = "escrow_hold"
	TxPayout     TransactionKind = "payout"
	TxRefund     TransactionKind = "refund"
)

// Transaction is an append-only wallet ledger entry. Amount is signed.
type Transaction struct {
	ID           string          `json:"id"`
	WalletID     string          `json:"wallet_id"`
	Kind         TransactionKind `json:"kind"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	OrderID      string          `json:"order_id,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
