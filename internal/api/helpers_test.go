package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/auth"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/search"
	"github.com/reachlyapp/reachly-server/internal/service"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
	"github.com/reachlyapp/reachly-server/internal/store/sqlite"
)

type testServer struct {
	*Server
	api    humatest.TestAPI
	sqlite *sqlite.Store
}

// setupTestServer creates a test server backed by real stores in a temp dir.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "reachly.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	kv, err := store.OpenKV(filepath.Join(dir, "kv"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(index)

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	storage, err := images.NewStorage(dir)
	require.NoError(t, err)
	processor := images.NewProcessor(storage, logger)

	sseManager := sse.NewManager(logger)

	sessions := service.NewSessionService(st, tokens, logger)
	notifications := service.NewNotificationService(kv, sseManager, logger)
	wallets := service.NewWalletService(st, sseManager, "USD", logger)
	orders := service.NewOrderService(st, wallets, notifications, sseManager, logger)
	services := &Services{
		Auth:          service.NewAuthService(st, tokens, sessions, logger),
		Influencers:   service.NewInfluencerService(st, kv, processor, sseManager, "USD", logger),
		Discovery:     service.NewDiscoveryService(st, 20, 100, logger),
		Search:        service.NewSearchService(index, st, logger),
		Wishlist:      service.NewWishlistService(st, kv, logger),
		Orders:        orders,
		Chat:          service.NewChatService(st, orders, notifications, sseManager, logger),
		Wallets:       wallets,
		Notifications: notifications,
		Admin:         service.NewAdminService(st, kv, logger),
	}

	o := Options{Version: "test"}
	for _, fn := range opts {
		fn(&o)
	}
	server := NewServer(st, services, sseManager, o, logger)
	t.Cleanup(server.Close)

	return &testServer{Server: server, api: humatest.Wrap(t, server.API()), sqlite: st}
}

// envelope is the decoded response wrapper.
type envelope struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

// decodeData unwraps a success envelope into out.
func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, resp)
	require.True(t, env.Success, resp.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// register opens an account through the API and returns its tokens.
func (ts *testServer) register(t *testing.T, email, role string) AuthResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "correct-horse-battery",
		"display_name": email,
		"role":         role,
	})
	require.Equal(t, 200, resp.Code, resp.Body.String())
	var out AuthResponse
	decodeData(t, resp, &out)
	return out
}

// setupAdmin runs first-time setup and returns the admin's tokens.
func (ts *testServer) setupAdmin(t *testing.T) AuthResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":    "admin@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, 200, resp.Code, resp.Body.String())
	var out AuthResponse
	decodeData(t, resp, &out)
	return out
}

// createProfile creates an influencer profile owned by the caller.
func (ts *testServer) createProfile(t *testing.T, token string, body map[string]any) InfluencerResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/influencers", bearer(token), body)
	require.Equal(t, 201, resp.Code, resp.Body.String())
	var out InfluencerResponse
	decodeData(t, resp, &out)
	return out
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 3), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
