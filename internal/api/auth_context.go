package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/service"
)

// AuthenticatedInput is embedded by operations that need a bearer token. The
// header is read by authMiddleware; the field documents it in OpenAPI.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

type userKey struct{}

// withUser stores the authenticated user in ctx.
func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey{}).(*domain.User)
	return u
}

// RequireUser returns the authenticated user or a 401 error.
func RequireUser(ctx context.Context) (*domain.User, error) {
	u := UserFrom(ctx)
	if u == nil {
		return nil, domainerrors.Unauthorized("Authentication required")
	}
	return u, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// authMiddleware validates Bearer tokens and stores the user in the request
// context. Requests without a valid token continue anonymously; handlers that
// need a user call RequireUser.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, _, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}
