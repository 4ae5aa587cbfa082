package api

import "github.com/reachlyapp/reachly-server/internal/service"

// Services groups the business services the API server calls.
type Services struct {
	Auth          *service.AuthService
	Influencers   *service.InfluencerService
	Discovery     *service.DiscoveryService
	Search        *service.SearchService
	Wishlist      *service.WishlistService
	Orders        *service.OrderService
	Chat          *service.ChatService
	Wallets       *service.WalletService
	Notifications *service.NotificationService
	Admin         *service.AdminService
}
