package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
)

// CreateNotification stores n.
func (kv *KV) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return kv.Notifications.Create(ctx, n.ID, n)
}

// ListNotifications returns a user's notifications, newest first. A positive
// limit caps the result.
func (kv *KV) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for n, err := range kv.Notifications.ListByIndex(ctx, "user", userID) {
		if err != nil {
			return nil, err
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkNotificationRead marks one notification read. The notification must
// belong to userID.
func (kv *KV) MarkNotificationRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := kv.Notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, domainerrors.NotFound("notification not found")
	}
	if n.Read {
		return n, nil
	}

	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	if err := kv.Notifications.Update(ctx, id, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read
// and returns how many changed.
func (kv *KV) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	unread, err := kv.ListNotifications(ctx, userID, true, 0)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	for _, n := range unread {
		n.Read = true
		n.ReadAt = &now
		if err := kv.Notifications.Update(ctx, n.ID, n); err != nil {
			return 0, err
		}
	}
	return len(unread), nil
}

// CountUnreadNotifications returns the user's unread count.
func (kv *KV) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	n := 0
	for notif, err := range kv.Notifications.ListByIndex(ctx, "user", userID) {
		if err != nil {
			return 0, err
		}
		if !notif.Read {
			n++
		}
	}
	return n, nil
}

// sortNewestFirst orders notifications by creation time, newest first, ids breaking ties.
func sortNewestFirst(ns []*domain.Notification) {
	slices.SortFunc(ns, func(a, b *domain.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
