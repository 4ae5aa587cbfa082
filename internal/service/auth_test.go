package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
)

func TestAuthService_Setup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Setup(ctx, SetupRequest{
		Email:       "Admin@Example.com",
		Password:    "correct horse battery",
		DisplayName: "  Site   Admin ",
	}, ClientInfo{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	assert.Equal(t, "admin@example.com", resp.User.Email)
	assert.Equal(t, "Site Admin", resp.User.DisplayName)
	assert.Empty(t, resp.User.PasswordHash)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 900, resp.ExpiresIn)

	_, err = env.auth.Setup(ctx, SetupRequest{
		Email:    "second@example.com",
		Password: "another password",
	}, ClientInfo{})
	assert.Equal(t, domainerrors.CodeAlreadyConfigured, codeOf(err))
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "brand@example.com",
		Password: "long enough password",
		Role:     domain.RoleBusiness,
	}, ClientInfo{})
	require.NoError(t, err)
	assert.True(t, resp.User.IsBusiness())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterRequest{
			Email:    "BRAND@example.com",
			Password: "long enough password",
			Role:     domain.RoleInfluencer,
		}, ClientInfo{})
		assert.Equal(t, domainerrors.CodeAlreadyExists, codeOf(err))
	})

	t.Run("admin role is not open", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterRequest{
			Email:    "sneaky@example.com",
			Password: "long enough password",
			Role:     domain.RoleAdmin,
		}, ClientInfo{})
		require.Error(t, err)
		assert.Equal(t, domainerrors.CodeValidation, codeOf(err))

		var de *domainerrors.Error
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Details, "role")
	})

	t.Run("short password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterRequest{
			Email:    "short@example.com",
			Password: "short",
			Role:     domain.RoleBusiness,
		}, ClientInfo{})
		assert.Equal(t, domainerrors.CodeValidation, codeOf(err))
	})
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "creator@example.com",
		Password: "creator password",
		Role:     domain.RoleInfluencer,
	}, ClientInfo{})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "creator@example.com", Password: "wrong password"}, ClientInfo{})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, codeOf(err))

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"}, ClientInfo{})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, codeOf(err))

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "Creator@Example.com", Password: "creator password"}, ClientInfo{UserAgent: "test"})
	require.NoError(t, err)

	user, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, domain.RoleInfluencer, claims.Role)

	_, _, err = env.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.Equal(t, domainerrors.CodeUnauthorized, codeOf(err))

	me, err := env.auth.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, me.PasswordHash)
	assert.False(t, me.LastLoginAt.IsZero())
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.auth.Register(ctx, RegisterRequest{
		Email:    "rotate@example.com",
		Password: "rotate password",
		Role:     domain.RoleBusiness,
	}, ClientInfo{})
	require.NoError(t, err)

	second, err := env.auth.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken}, ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old token was rotated out.
	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken}, ClientInfo{})
	assert.Equal(t, domainerrors.CodeTokenExpired, codeOf(err))

	require.NoError(t, env.auth.Logout(ctx, RefreshRequest{RefreshToken: second.RefreshToken}))
	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: second.RefreshToken}, ClientInfo{})
	assert.Equal(t, domainerrors.CodeTokenExpired, codeOf(err))

	// Logging out twice is harmless.
	assert.NoError(t, env.auth.Logout(ctx, RefreshRequest{RefreshToken: second.RefreshToken}))
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t, domain.RoleBusiness)
	_, err := env.sessions.CreateSession(ctx, u, ClientInfo{})
	require.NoError(t, err)

	n, err := env.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
