package domain

import (
	"fmt"
	"time"

	"github.com/reachlyapp/reachly-server/internal/discovery"
)

// OrderStatus is a step in the order lifecycle.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderAccepted, OrderRejected, OrderCancelled},
	OrderAccepted: {OrderCompleted},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order is a business's paid request for a post by an influencer.
// The price is held in escrow from placement until completion or refund.
type Order struct {
	ID           string             `json:"id"`
	BusinessID   string             `json:"business_id"`
	InfluencerID string             `json:"influencer_id"`
	Platform     discovery.Platform `json:"platform"`
	Brief        string             `json:"brief"`
	Price        int64              `json:"price"`
	Currency     string             `json:"currency"`
	Status       OrderStatus        `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

// Transition moves the order to next, or returns an error naming both states.
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	if !o.Status.CanTransition(next) {
		return fmt.Errorf("order %s cannot move from %s to %s", o.ID, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	if next == OrderCompleted {
		o.CompletedAt = &at
	}
	return nil
}
