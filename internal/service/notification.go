package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

const defaultNotificationLimit = 50

// NotificationService persists per-user notifications and pushes them live.
type NotificationService struct {
	kv      *store.KV
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(kv *store.KV, emitter store.EventEmitter, logger *slog.Logger) *NotificationService {
	return &NotificationService{kv: kv, emitter: emitter, logger: logger}
}

// Notify stores a notification for userID, then emits it with the user's
// new unread count.
func (s *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationKind, title, body, link string) (*domain.Notification, error) {
	notificationID, err := id.Generate(id.PrefixNotification)
	if err != nil {
		return nil, fmt.Errorf("generate notification ID: %w", err)
	}
	n := &domain.Notification{
		ID:        notificationID,
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: time.Now(),
	}
	if err := s.kv.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}

	unread, err := s.kv.CountUnreadNotifications(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to count unread notifications", "user_id", userID, "error", err)
	}
	s.emitter.Emit(sse.NewNotificationCreatedEvent(n, unread))
	return n, nil
}

// notify is Notify for callers that must not fail because a notification
// could not be written.
func (s *NotificationService) notify(ctx context.Context, userID string, kind domain.NotificationKind, title, body, link string) {
	if _, err := s.Notify(ctx, userID, kind, title, body, link); err != nil {
		s.logger.Warn("failed to send notification", "user_id", userID, "kind", kind, "error", err)
	}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *domain.User, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return s.kv.ListNotifications(ctx, actor.ID, unreadOnly, limit)
}

// MarkRead marks one of the actor's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID string) (*domain.Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	n, err := s.kv.MarkNotificationRead(ctx, actor.ID, notificationID)
	if err != nil {
		return nil, notFound(err, "notification")
	}
	return n, nil
}

// MarkAllRead marks every notification of the actor read and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) (int, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	return s.kv.MarkAllNotificationsRead(ctx, actor.ID)
}

// UnreadCount returns the actor's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *domain.User) (int, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	return s.kv.CountUnreadNotifications(ctx, actor.ID)
}
