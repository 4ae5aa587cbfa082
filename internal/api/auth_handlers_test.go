package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)

	admin := ts.setupAdmin(t)
	assert.Equal(t, "admin", admin.User.Role)
	assert.Equal(t, "Bearer", admin.TokenType)
	assert.NotEmpty(t, admin.AccessToken)

	// Setup only works once.
	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":    "second@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_CONFIGURED", decodeEnvelope(t, resp).Code)

	biz := ts.register(t, "shop@example.com", "business")
	assert.Equal(t, "business", biz.User.Role)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "shop@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var login AuthResponse
	decodeData(t, resp, &login)

	resp = ts.api.Get("/api/v1/auth/me", bearer(login.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var me UserResponse
	decodeData(t, resp, &me)
	assert.Equal(t, biz.User.ID, me.ID)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var refreshed AuthResponse
	decodeData(t, resp, &refreshed)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{"refresh_token": refreshed.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "creator@example.com", "influencer")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "creator@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, 1, env.V)
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("admin role is not self-service", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"email":    "sneaky@example.com",
			"password": "correct-horse-battery",
			"role":     "admin",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		env := decodeEnvelope(t, resp)
		assert.Equal(t, "VALIDATION", env.Code)
		assert.NotEmpty(t, env.Details)
	})

	t.Run("short password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"email":    "short@example.com",
			"password": "abc",
			"role":     "business",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp).Code)
	})

	t.Run("missing email", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"password": "correct-horse-battery",
			"role":     "business",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestMe_RequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, resp).Code)

	resp = ts.api.Get("/api/v1/auth/me", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.LoginRatePerMinute = 2 })

	login := map[string]any{"email": "nobody@example.com", "password": "whatever-it-is"}
	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", login)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope(t, resp).Code)

	// Another client is unaffected.
	resp = ts.api.Post("/api/v1/auth/login", "X-Forwarded-For: 203.0.113.9", login)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "203.0.113.1", clientIP("203.0.113.1, 10.0.0.1", "10.0.0.2", "10.0.0.3:555"))
	assert.Equal(t, "10.0.0.2", clientIP("", "10.0.0.2", "10.0.0.3:555"))
	assert.Equal(t, "10.0.0.3", clientIP("", "", "10.0.0.3:555"))
	assert.Equal(t, "pipe", clientIP("", "", "pipe"))
}
