package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decodeData(t, resp, &health)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["sse"].Status)
	// Nothing indexed yet.
	assert.Equal(t, "degraded", health.Components["search"].Status)
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "test", health.Version)

	seedRoster(t, ts)
	resp = ts.api.Get("/health")
	decodeData(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
}

func TestWishlist(t *testing.T) {
	ts := setupTestServer(t)
	amara, kwame, amaraToken := seedRoster(t, ts)
	biz := ts.register(t, "shop@example.com", "business")

	for _, id := range []string{amara.ID, kwame.ID} {
		resp := ts.api.Post("/api/v1/wishlist/"+id, bearer(biz.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var toggled ToggleWishlistResponse
		decodeData(t, resp, &toggled)
		assert.True(t, toggled.Saved)
	}

	resp := ts.api.Post("/api/v1/wishlist/"+amara.ID, bearer(biz.AccessToken))
	var toggled ToggleWishlistResponse
	decodeData(t, resp, &toggled)
	assert.False(t, toggled.Saved)

	resp = ts.api.Get("/api/v1/wishlist", bearer(biz.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var list WishlistResponse
	decodeData(t, resp, &list)
	assert.Equal(t, []string{kwame.ID}, ids(list.Items))

	resp = ts.api.Post("/api/v1/wishlist/inf_missing", bearer(biz.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/wishlist/"+kwame.ID, bearer(amaraToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestNotifications(t *testing.T) {
	ts := setupTestServer(t)
	amara, _, amaraToken := seedRoster(t, ts)
	biz := ts.register(t, "shop@example.com", "business")
	topUp(t, ts, biz.AccessToken, 5_000)

	resp := ts.api.Post("/api/v1/orders", bearer(biz.AccessToken), map[string]any{
		"influencer_id": amara.ID,
		"platform":      "instagram",
		"brief":         "Hello",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/notifications", bearer(amaraToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var list NotificationListResponse
	decodeData(t, resp, &list)
	require.NotEmpty(t, list.Items)
	assert.Equal(t, domain.NotifyOrderPlaced, list.Items[0].Kind)
	assert.Equal(t, len(list.Items), list.UnreadCount)

	resp = ts.api.Post("/api/v1/notifications/"+list.Items[0].ID+"/read", bearer(amaraToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var n domain.Notification
	decodeData(t, resp, &n)
	assert.True(t, n.Read)

	// Not someone else's.
	resp = ts.api.Post("/api/v1/notifications/"+list.Items[0].ID+"/read", bearer(biz.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/notifications/read-all", bearer(amaraToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notifications?unread=true", bearer(amaraToken))
	decodeData(t, resp, &list)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.UnreadCount)
}

func TestAdminStats(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	seedRoster(t, ts)
	biz := ts.register(t, "shop@example.com", "business")

	resp := ts.api.Get("/api/v1/admin/stats", bearer(biz.AccessToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/admin/stats", bearer(admin.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var dash struct {
		UsersByRole map[string]int `json:"users_by_role"`
		Influencers int            `json:"influencers"`
	}
	decodeData(t, resp, &dash)
	assert.Equal(t, 2, dash.Influencers)
	assert.Equal(t, 1, dash.UsersByRole["admin"])
	assert.Equal(t, 2, dash.UsersByRole["influencer"])
	assert.Equal(t, 1, dash.UsersByRole["business"])
}

func TestEvents_RequiresAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/events")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	resp = ts.api.Get("/api/v1/events?token=forged")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
