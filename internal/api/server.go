// Package api provides the HTTP API server and handlers for Reachly.
package api

import (
	"cmp"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reachlyapp/reachly-server/internal/ratelimit"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// LoginRatePerMinute limits setup, register, login and refresh per client
	// IP. Zero disables the limit.
	LoginRatePerMinute int
	Version            string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
	router          *chi.Mux
	api             huma.API
	version         string
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:      st,
		services:   services,
		sseManager: sseManager,
		sseHandler: sse.NewHandler(sseManager, logger),
		router:     chi.NewRouter(),
		version:    opts.Version,
		logger:     logger,
	}
	if opts.LoginRatePerMinute > 0 {
		s.authRateLimiter = ratelimit.PerMinute(opts.LoginRatePerMinute)
	}

	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("Reachly API", cmp.Or(opts.Version, "dev"))
	humaConfig.Info.Description = "Influencer marketplace: discovery, orders, wallets and chat."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)

	RegisterErrorHandler()
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(withRemoteAddr)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	s.router.Use(middleware.Compress(5, "application/json"))
	s.router.Use(authMiddleware(s.services.Auth))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerInfluencerRoutes()
	s.registerSearchRoutes()
	s.registerWishlistRoutes()
	s.registerOrderRoutes()
	s.registerMessageRoutes()
	s.registerWalletRoutes()
	s.registerNotificationRoutes()
	s.registerAdminRoutes()
	s.registerEventRoutes()
}

// bearerSecurity marks an operation as requiring a bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}
