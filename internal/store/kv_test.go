package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) *store.KV {
	t.Helper()
	kv, err := store.OpenKV(filepath.Join(t.TempDir(), "kv"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestWishlist_Toggle(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	saved, err := kv.ToggleWishlist(ctx, "usr-1", "inf-1")
	require.NoError(t, err)
	assert.True(t, saved)

	in, err := kv.InWishlist(ctx, "usr-1", "inf-1")
	require.NoError(t, err)
	assert.True(t, in)

	saved, err = kv.ToggleWishlist(ctx, "usr-1", "inf-1")
	require.NoError(t, err)
	assert.False(t, saved)

	in, err = kv.InWishlist(ctx, "usr-1", "inf-1")
	require.NoError(t, err)
	assert.False(t, in)
}

func TestWishlist_ListNewestFirstAndScopedToUser(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	for _, inf := range []string{"inf-a", "inf-b", "inf-c"} {
		_, err := kv.ToggleWishlist(ctx, "usr-1", inf)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := kv.ToggleWishlist(ctx, "usr-2", "inf-a")
	require.NoError(t, err)

	entries, err := kv.ListWishlist(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "inf-c", entries[0].InfluencerID)
	assert.Equal(t, "inf-a", entries[2].InfluencerID)

	counts, err := kv.CountWishlisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"inf-a": 2, "inf-b": 1, "inf-c": 1}, counts)

	removed, err := kv.RemoveInfluencerFromWishlists(ctx, "inf-a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err = kv.ListWishlist(ctx, "usr-2")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func newNotification(id, userID string, at time.Time) *domain.Notification {
	return &domain.Notification{ID: id, UserID: userID, Kind: domain.NotifyOrderPlaced, Title: "New order", CreatedAt: at}
}

func TestNotifications(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, kv.CreateNotification(ctx, newNotification("ntf-1", "usr-1", base)))
	require.NoError(t, kv.CreateNotification(ctx, newNotification("ntf-2", "usr-1", base.Add(time.Minute))))
	require.NoError(t, kv.CreateNotification(ctx, newNotification("ntf-3", "usr-1", base.Add(2*time.Minute))))
	require.NoError(t, kv.CreateNotification(ctx, newNotification("ntf-4", "usr-2", base)))

	all, err := kv.ListNotifications(ctx, "usr-1", false, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ntf-3", all[0].ID)

	limited, err := kv.ListNotifications(ctx, "usr-1", false, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := kv.MarkNotificationRead(ctx, "usr-1", "ntf-2")
	require.NoError(t, err)
	assert.True(t, n.Read)
	require.NotNil(t, n.ReadAt)

	_, err = kv.MarkNotificationRead(ctx, "usr-2", "ntf-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	unread, err := kv.CountUnreadNotifications(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	changed, err := kv.MarkAllNotificationsRead(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	unreadList, err := kv.ListNotifications(ctx, "usr-1", true, 0)
	require.NoError(t, err)
	assert.Empty(t, unreadList)

	other, err := kv.CountUnreadNotifications(ctx, "usr-2")
	require.NoError(t, err)
	assert.Equal(t, 1, other)
}
