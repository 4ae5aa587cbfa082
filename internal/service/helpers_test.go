package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/auth"
	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/search"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
	"github.com/reachlyapp/reachly-server/internal/store/sqlite"
)

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := event.(sse.Event); ok {
		r.events = append(r.events, e)
	}
}

func (r *recordingEmitter) ofType(t sse.EventType) []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sse.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	store   *sqlite.Store
	kv      *store.KV
	index   *search.SearchIndex
	tokens  *auth.TokenService
	emitter *recordingEmitter
	logger  *slog.Logger

	auth          *AuthService
	sessions      *SessionService
	notifications *NotificationService
	wallets       *WalletService
	orders        *OrderService
	chat          *ChatService
	influencers   *InfluencerService
	discovery     *DiscoveryService
	search        *SearchService
	wishlist      *WishlistService
	admin         *AdminService
	roster        *RosterService
}

func newTestEnv(t *testing.T) *testEnv {
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

	emitter := &recordingEmitter{}
	env := &testEnv{store: st, kv: kv, index: index, tokens: tokens, emitter: emitter, logger: logger}

	env.sessions = NewSessionService(st, tokens, logger)
	env.auth = NewAuthService(st, tokens, env.sessions, logger)
	env.notifications = NewNotificationService(kv, emitter, logger)
	env.wallets = NewWalletService(st, emitter, "USD", logger)
	env.orders = NewOrderService(st, env.wallets, env.notifications, emitter, logger)
	env.chat = NewChatService(st, env.orders, env.notifications, emitter, logger)
	env.influencers = NewInfluencerService(st, kv, processor, emitter, "USD", logger)
	env.discovery = NewDiscoveryService(st, 2, 5, logger)
	env.search = NewSearchService(index, st, logger)
	env.wishlist = NewWishlistService(st, kv, logger)
	env.admin = NewAdminService(st, kv, logger)
	env.roster = NewRosterService(st, RosterOptions{
		Search:   env.search,
		Emitter:  emitter,
		Currency: "USD",
		Workers:  3,
		Logger:   logger,
	})
	return env
}

// createUser inserts an account directly; its password is not usable.
func (e *testEnv) createUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	userID := id.MustGenerate(id.PrefixUser)
	now := time.Now()
	u := &domain.User{
		ID:           userID,
		Email:        userID + "@example.com",
		PasswordHash: "$argon2id$unused",
		DisplayName:  string(role) + " " + userID[len(userID)-4:],
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// createInfluencer stores a profile owned by ownerID with followers on Instagram.
func (e *testEnv) createInfluencer(t *testing.T, ownerID, name string, price int64) *domain.Influencer {
	t.Helper()
	now := time.Now()
	inf := &domain.Influencer{
		Record: discovery.Record{
			ID:       id.MustGenerate(id.PrefixInfluencer),
			Name:     name,
			Category: "Lifestyle",
			Country:  &discovery.Place{Name: "Nigeria"},
			Data: map[discovery.Platform]*discovery.PlatformStats{
				discovery.Instagram: {TotalFollowers: 50_000},
			},
		},
		UserID:       ownerID,
		Slug:         id.MustGenerate("slug"),
		PricePerPost: price,
		Currency:     "USD",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateInfluencer(context.Background(), inf))
	return inf
}

func (e *testEnv) balance(t *testing.T, userID string) int64 {
	t.Helper()
	w, err := e.store.GetOrCreateWallet(context.Background(), userID, "USD")
	require.NoError(t, err)
	return w.Balance
}

func (e *testEnv) topUp(t *testing.T, u *domain.User, amount int64) {
	t.Helper()
	_, err := e.wallets.TopUp(context.Background(), u, TopUpRequest{Amount: amount})
	require.NoError(t, err)
}

func codeOf(err error) domainerrors.Code {
	return domainerrors.CodeOf(err)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
