package domain

import "time"

// NotificationKind tells clients how to render a notification.
type NotificationKind string

const (
	NotifyOrderPlaced     NotificationKind = "order_placed"
	NotifyOrderAccepted   NotificationKind = "order_accepted"
	NotifyOrderRejected   NotificationKind = "order_rejected"
	NotifyOrderCompleted  NotificationKind = "order_completed"
	NotifyOrderCancelled  NotificationKind = "order_cancelled"
	NotifyMessageReceived NotificationKind = "message_received"
	NotifyWalletCredited  NotificationKind = "wallet_credited"
)

// Notification is a message for one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// WishlistEntry records that a business saved an influencer.
type WishlistEntry struct {
	UserID       string    `json:"user_id"`
	InfluencerID string    `json:"influencer_id"`
	AddedAt      time.Time `json:"added_at"`
}
