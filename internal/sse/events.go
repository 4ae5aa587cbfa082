// Package sse pushes marketplace events to connected clients over
// Server-Sent Events.
package sse

import (
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

// EventType names an SSE event.
type EventType string

const (
	EventConnected EventType = "connected"
	EventHeartbeat EventType = "heartbeat"

	EventInfluencerCreated EventType = "influencer.created"
	EventInfluencerUpdated EventType = "influencer.updated"
	EventInfluencerDeleted EventType = "influencer.deleted"

	// EventOrderCreated goes to the influencer the order was placed with.
	EventOrderCreated EventType = "order.created"
	// EventOrderUpdated goes to both parties on every status change.
	EventOrderUpdated EventType = "order.updated"

	EventMessageCreated      EventType = "message.created"
	EventNotificationCreated EventType = "notification.created"
	EventWalletUpdated       EventType = "wallet.updated"

	// EventRosterImported is sent to admins only.
	EventRosterImported EventType = "roster.imported"
)

// Event is an SSE message. UserID and AdminOnly select recipients and are
// never sent.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID restricts delivery to one user. Empty means everyone.
	UserID    string `json:"-"`
	AdminOnly bool   `json:"-"`
}

// InfluencerEventData carries a profile.
type InfluencerEventData struct {
	Influencer *domain.Influencer `json:"influencer"`
}

// InfluencerDeletedEventData carries a removed profile's ID.
type InfluencerDeletedEventData struct {
	InfluencerID string    `json:"influencer_id"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// OrderEventData carries an order.
type OrderEventData struct {
	Order *domain.Order `json:"order"`
}

// MessageEventData carries a chat message.
type MessageEventData struct {
	Message *domain.Message `json:"message"`
}

// NotificationEventData carries a notification and the recipient's unread count.
type NotificationEventData struct {
	Notification *domain.Notification `json:"notification"`
	UnreadCount  int                  `json:"unread_count"`
}

// WalletEventData carries a wallet after a balance change.
type WalletEventData struct {
	Wallet *domain.Wallet `json:"wallet"`
}

// RosterImportedEventData summarizes a roster import.
type RosterImportedEventData struct {
	Source   string `json:"source"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
}

// HeartbeatEventData is the payload of heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewInfluencerCreatedEvent creates an influencer.created event for everyone.
func NewInfluencerCreatedEvent(inf *domain.Influencer) Event {
	return newEvent(EventInfluencerCreated, InfluencerEventData{Influencer: inf})
}

// NewInfluencerUpdatedEvent creates an influencer.updated event for everyone.
func NewInfluencerUpdatedEvent(inf *domain.Influencer) Event {
	return newEvent(EventInfluencerUpdated, InfluencerEventData{Influencer: inf})
}

// NewInfluencerDeletedEvent creates an influencer.deleted event for everyone.
func NewInfluencerDeletedEvent(influencerID string, deletedAt time.Time) Event {
	return newEvent(EventInfluencerDeleted, InfluencerDeletedEventData{
		InfluencerID: influencerID,
		DeletedAt:    deletedAt,
	})
}

// NewOrderCreatedEvent creates an order.created event for userID.
func NewOrderCreatedEvent(userID string, order *domain.Order) Event {
	e := newEvent(EventOrderCreated, OrderEventData{Order: order})
	e.UserID = userID
	return e
}

// NewOrderUpdatedEvent creates an order.updated event for userID.
func NewOrderUpdatedEvent(userID string, order *domain.Order) Event {
	e := newEvent(EventOrderUpdated, OrderEventData{Order: order})
	e.UserID = userID
	return e
}

// NewMessageCreatedEvent creates a message.created event for userID.
func NewMessageCreatedEvent(userID string, msg *domain.Message) Event {
	e := newEvent(EventMessageCreated, MessageEventData{Message: msg})
	e.UserID = userID
	return e
}

// NewNotificationCreatedEvent creates a notification.created event for its recipient.
func NewNotificationCreatedEvent(n *domain.Notification, unread int) Event {
	e := newEvent(EventNotificationCreated, NotificationEventData{Notification: n, UnreadCount: unread})
	e.UserID = n.UserID
	return e
}

// NewWalletUpdatedEvent creates a wallet.updated event for the wallet's owner.
func NewWalletUpdatedEvent(w *domain.Wallet) Event {
	e := newEvent(EventWalletUpdated, WalletEventData{Wallet: w})
	e.UserID = w.UserID
	return e
}

// NewRosterImportedEvent creates an admin-only roster.imported event.
func NewRosterImportedEvent(data RosterImportedEventData) Event {
	e := newEvent(EventRosterImported, data)
	e.AdminOnly = true
	return e
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}
