package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/stats",
		Summary:     "Marketplace statistics",
		Description: "Account, order, money and roster totals for the admin dashboard",
		Tags:        []string{"Admin"},
		Security:    bearerSecurity,
	}, s.handleAdminStats)
}

// AdminStatsOutput wraps the dashboard for Huma.
type AdminStatsOutput struct {
	Body *service.Dashboard
}

func (s *Server) handleAdminStats(ctx context.Context, _ *AuthenticatedInput) (*AdminStatsOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	dash, err := s.services.Admin.Dashboard(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AdminStatsOutput{Body: dash}, nil
}
