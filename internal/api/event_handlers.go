package api

import (
	"net/http"

	"github.com/reachlyapp/reachly-server/internal/http/response"
	"github.com/reachlyapp/reachly-server/internal/sse"
)

func (s *Server) registerEventRoutes() {
	// Long-lived stream, served outside huma.
	s.router.Get("/api/v1/events", s.handleEvents)
}

// handleEvents authenticates the subscriber and hands the connection to the
// SSE handler. Browsers' EventSource cannot set headers, so the access token
// may also come from the token query parameter.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		token := r.URL.Query().Get("token")
		if token == "" {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}
		u, _, err := s.services.Auth.VerifyAccessToken(r.Context(), token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}
		user = u
	}

	ctx := sse.WithIdentity(r.Context(), sse.Identity{UserID: user.ID, IsAdmin: user.IsAdmin()})
	s.sseHandler.ServeHTTP(w, r.WithContext(ctx))
}
