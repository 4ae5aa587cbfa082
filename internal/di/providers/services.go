package providers

import (
	"github.com/samber/do/v2"

	"github.com/reachlyapp/reachly-server/internal/auth"
	"github.com/reachlyapp/reachly-server/internal/config"
	"github.com/reachlyapp/reachly-server/internal/logger"
	"github.com/reachlyapp/reachly-server/internal/media/images"
	"github.com/reachlyapp/reachly-server/internal/service"
)

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideNotificationService provides the notification inbox service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	kvHandle := do.MustInvoke[*KVHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(kvHandle.KV, sseHandle.Manager, log.Logger), nil
}

// ProvideWalletService provides the wallet service.
func ProvideWalletService(i do.Injector) (*service.WalletService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWalletService(storeHandle.Store, sseHandle.Manager, cfg.Wallet.Currency, log.Logger), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	wallets := do.MustInvoke[*service.WalletService](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOrderService(storeHandle.Store, wallets, notifications, sseHandle.Manager, log.Logger), nil
}

// ProvideChatService provides the order chat service.
func ProvideChatService(i do.Injector) (*service.ChatService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	orders := do.MustInvoke[*service.OrderService](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChatService(storeHandle.Store, orders, notifications, sseHandle.Manager, log.Logger), nil
}

// ProvideInfluencerService provides the influencer profile service.
func ProvideInfluencerService(i do.Injector) (*service.InfluencerService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInfluencerService(
		storeHandle.Store,
		kvHandle.KV,
		processor,
		sseHandle.Manager,
		cfg.Wallet.Currency,
		log.Logger,
	), nil
}

// ProvideDiscoveryService provides the filtered listing service.
func ProvideDiscoveryService(i do.Injector) (*service.DiscoveryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDiscoveryService(
		storeHandle.Store,
		cfg.Discovery.DefaultPageSize,
		cfg.Discovery.MaxPageSize,
		log.Logger,
	), nil
}

// ProvideWishlistService provides the wishlist service.
func ProvideWishlistService(i do.Injector) (*service.WishlistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWishlistService(storeHandle.Store, kvHandle.KV, log.Logger), nil
}

// ProvideAdminService provides the admin dashboard service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, kvHandle.KV, log.Logger), nil
}

// ProvideRosterService provides the bulk roster importer.
func ProvideRosterService(i do.Injector) (*service.RosterService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fetcher := do.MustInvoke[*images.Fetcher](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRosterService(storeHandle.Store, service.RosterOptions{
		Avatars:  fetcher,
		Search:   searchService,
		Emitter:  sseHandle.Manager,
		Currency: cfg.Wallet.Currency,
		Workers:  cfg.Roster.ImportWorkers,
		Logger:   log.Logger,
	}), nil
}
