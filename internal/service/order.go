package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

// OrderService runs the order lifecycle. Placing an order holds its price in
// escrow; completion pays it to the influencer and rejection or cancellation
// refunds it.
//
//	pending ──accept──▶ accepted ──complete──▶ completed
//	   │
//	   ├──reject──▶ rejected
//	   └──cancel──▶ cancelled
type OrderService struct {
	store         store.Store
	wallets       *WalletService
	notifications *NotificationService
	emitter       store.EventEmitter
	logger        *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	store store.Store,
	wallets *WalletService,
	notifications *NotificationService,
	emitter store.EventEmitter,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		store:         store,
		wallets:       wallets,
		notifications: notifications,
		emitter:       emitter,
		logger:        logger,
	}
}

// PlaceOrderRequest asks an influencer for one post.
type PlaceOrderRequest struct {
	InfluencerID string             `json:"influencer_id" validate:"required"`
	Platform     discovery.Platform `json:"platform" validate:"required,platform"`
	Brief        string             `json:"brief" validate:"required,max=4000"`
}

// ListOrdersRequest filters a caller's orders.
type ListOrdersRequest struct {
	// InfluencerID is required for admins, who have no orders of their own.
	InfluencerID string
	Status       domain.OrderStatus
}

func orderLink(orderID string) string { return "/orders/" + orderID }

func escrowReference(orderID, step string) string {
	return "order:" + orderID + ":" + step
}

// Place creates a pending order and moves its price from the business's
// wallet into escrow.
func (s *OrderService) Place(ctx context.Context, actor *domain.User, req PlaceOrderRequest) (*domain.Order, error) {
	if err := requireBusiness(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	inf, err := s.store.GetInfluencer(ctx, req.InfluencerID)
	if err != nil {
		return nil, notFound(err, "influencer")
	}
	if inf.UserID == "" {
		return nil, domainerrors.Validation("influencer is not accepting orders")
	}
	if inf.FollowersOn(req.Platform) == 0 {
		return nil, domainerrors.Validationf("influencer does not publish on %s", req.Platform)
	}

	orderID, err := id.Generate(id.PrefixOrder)
	if err != nil {
		return nil, fmt.Errorf("generate order ID: %w", err)
	}
	now := time.Now()
	order := &domain.Order{
		ID:           orderID,
		BusinessID:   actor.ID,
		InfluencerID: inf.ID,
		Platform:     req.Platform,
		Brief:        req.Brief,
		Price:        inf.PricePerPost,
		Currency:     inf.Currency,
		Status:       domain.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.wallets.apply(ctx, store.WalletMove{
		UserID:    actor.ID,
		Currency:  order.Currency,
		Kind:      domain.TxEscrowHold,
		Amount:    -order.Price,
		OrderID:   order.ID,
		Reference: escrowReference(order.ID, "hold"),
	}); err != nil {
		return nil, err
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		s.refund(ctx, order)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"business_id", actor.ID,
		"influencer_id", inf.ID,
		"price", order.Price,
	)

	s.emitter.Emit(sse.NewOrderCreatedEvent(inf.UserID, order))
	s.notifications.notify(ctx, inf.UserID, domain.NotifyOrderPlaced,
		"New order from "+actor.Name(), order.Brief, orderLink(order.ID))
	return order, nil
}

// Get returns an order the actor takes part in.
func (s *OrderService) Get(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	order, inf, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !participant(actor, order, inf) {
		// Orders are private; hide their existence.
		return nil, domainerrors.NotFound("order not found")
	}
	return order, nil
}

// List returns the actor's orders, newest first.
func (s *OrderService) List(ctx context.Context, actor *domain.User, req ListOrdersRequest) ([]*domain.Order, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	var orders []*domain.Order
	switch {
	case actor.IsBusiness():
		list, err := s.store.ListOrdersForBusiness(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		orders = list
	case actor.IsInfluencer():
		profiles, err := s.ownedProfiles(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, inf := range profiles {
			list, err := s.store.ListOrdersForInfluencer(ctx, inf.ID)
			if err != nil {
				return nil, err
			}
			orders = append(orders, list...)
		}
		slices.SortFunc(orders, func(a, b *domain.Order) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
		})
	default:
		if req.InfluencerID == "" {
			return nil, domainerrors.Validation("influencer_id is required")
		}
		list, err := s.store.ListOrdersForInfluencer(ctx, req.InfluencerID)
		if err != nil {
			return nil, err
		}
		orders = list
	}

	if req.Status != "" {
		orders = slices.DeleteFunc(orders, func(o *domain.Order) bool { return o.Status != req.Status })
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// Accept moves a pending order to accepted. Only the influencer may accept.
func (s *OrderService) Accept(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, inf, err := s.loadFor(ctx, actor, orderID, influencerSide)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, domain.OrderAccepted); err != nil {
		return nil, err
	}
	s.announce(order, inf)
	s.notifications.notify(ctx, order.BusinessID, domain.NotifyOrderAccepted,
		inf.Name+" accepted your order", "", orderLink(order.ID))
	return order, nil
}

// Reject moves a pending order to rejected and refunds the business.
func (s *OrderService) Reject(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, inf, err := s.loadFor(ctx, actor, orderID, influencerSide)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, domain.OrderRejected, s.refundMove(order)); err != nil {
		return nil, err
	}
	s.announce(order, inf)
	s.notifications.notify(ctx, order.BusinessID, domain.NotifyOrderRejected,
		inf.Name+" declined your order", "The escrowed amount was refunded to your wallet.", orderLink(order.ID))
	return order, nil
}

// Complete moves an accepted order to completed and releases the escrow to
// the influencer. Only the business may complete.
func (s *OrderService) Complete(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, inf, err := s.loadFor(ctx, actor, orderID, businessSide)
	if err != nil {
		return nil, err
	}
	if inf == nil || inf.UserID == "" {
		return nil, domainerrors.Conflict("influencer profile has no account to pay")
	}
	payout := store.WalletMove{
		UserID:    inf.UserID,
		Currency:  order.Currency,
		Kind:      domain.TxPayout,
		Amount:    order.Price,
		OrderID:   order.ID,
		Reference: escrowReference(order.ID, "payout"),
	}
	if err := s.transition(ctx, order, domain.OrderCompleted, payout); err != nil {
		return nil, err
	}

	s.announce(order, inf)
	s.notifications.notify(ctx, inf.UserID, domain.NotifyOrderCompleted,
		"Order completed", "The payment was released to your wallet.", orderLink(order.ID))
	s.notifications.notify(ctx, inf.UserID, domain.NotifyWalletCredited,
		"Wallet credited", fmt.Sprintf("%d %s from order %s", order.Price, order.Currency, order.ID), "/wallet")
	return order, nil
}

// Cancel withdraws a pending order and refunds the business.
func (s *OrderService) Cancel(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	order, inf, err := s.loadFor(ctx, actor, orderID, businessSide)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, domain.OrderCancelled, s.refundMove(order)); err != nil {
		return nil, err
	}
	s.announce(order, inf)
	if inf != nil && inf.UserID != "" {
		s.notifications.notify(ctx, inf.UserID, domain.NotifyOrderCancelled,
			"Order cancelled", "", orderLink(order.ID))
	}
	return order, nil
}

type side int

const (
	businessSide side = iota
	influencerSide
)

// loadFor loads an order and checks the actor may act on it for side.
// Admins may act on either side.
func (s *OrderService) loadFor(ctx context.Context, actor *domain.User, orderID string, sd side) (*domain.Order, *domain.Influencer, error) {
	if err := requireUser(actor); err != nil {
		return nil, nil, err
	}
	order, inf, err := s.load(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !participant(actor, order, inf) {
		return nil, nil, domainerrors.NotFound("order not found")
	}
	if actor.IsAdmin() {
		return order, inf, nil
	}

	switch sd {
	case businessSide:
		if order.BusinessID != actor.ID {
			return nil, nil, domainerrors.Forbidden("only the business that placed the order can do this")
		}
	case influencerSide:
		if inf == nil || inf.UserID != actor.ID {
			return nil, nil, domainerrors.Forbidden("only the influencer can do this")
		}
	}
	return order, inf, nil
}

// load returns the order and its influencer profile. The profile is nil if
// it was deleted since the order was placed.
func (s *OrderService) load(ctx context.Context, orderID string) (*domain.Order, *domain.Influencer, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, notFound(err, "order")
	}
	inf, err := s.store.GetInfluencer(ctx, order.InfluencerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, err
		}
		inf = nil
	}
	return order, inf, nil
}

func participant(actor *domain.User, order *domain.Order, inf *domain.Influencer) bool {
	if actor.IsAdmin() || order.BusinessID == actor.ID {
		return true
	}
	return inf != nil && inf.UserID != "" && inf.UserID == actor.ID
}

// counterparty returns the user on the other side of the order from userID,
// or "" if there is none.
func counterparty(userID string, order *domain.Order, inf *domain.Influencer) string {
	if userID == order.BusinessID {
		if inf == nil {
			return ""
		}
		return inf.UserID
	}
	return order.BusinessID
}

// transition moves order to next, failing with a conflict if the move is
// not allowed or another request changed the order first. Wallet moves are
// committed with the status change or not at all.
func (s *OrderService) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus, moves ...store.WalletMove) error {
	from := order.Status
	if err := order.Transition(next, time.Now()); err != nil {
		return domainerrors.Conflictf("order is %s and cannot be %s", from, next)
	}

	var err error
	if len(moves) == 0 {
		err = notFound(s.store.UpdateOrderStatus(ctx, order, from), "order")
	} else {
		_, err = s.wallets.settle(ctx, order, from, moves...)
	}
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domainerrors.Conflict("order was changed by another request").WithCause(err)
		}
		s.logger.Error("failed to change order status", "order_id", order.ID, "from", from, "to", next, "error", err)
		return err
	}
	s.logger.Info("order status changed", "order_id", order.ID, "from", from, "to", next)
	return nil
}

// refundMove returns the escrowed price to the business. The reference is
// unique per order, so a refund is never paid twice.
func (s *OrderService) refundMove(order *domain.Order) store.WalletMove {
	return store.WalletMove{
		UserID:    order.BusinessID,
		Currency:  order.Currency,
		Kind:      domain.TxRefund,
		Amount:    order.Price,
		OrderID:   order.ID,
		Reference: escrowReference(order.ID, "refund"),
	}
}

// refund applies refundMove on its own, for orders that were never saved.
func (s *OrderService) refund(ctx context.Context, order *domain.Order) {
	if _, err := s.wallets.apply(ctx, s.refundMove(order)); err != nil {
		s.logger.Error("failed to refund order", "order_id", order.ID, "error", err)
	}
}

// announce sends order.updated to both parties.
func (s *OrderService) announce(order *domain.Order, inf *domain.Influencer) {
	s.emitter.Emit(sse.NewOrderUpdatedEvent(order.BusinessID, order))
	if inf != nil && inf.UserID != "" {
		s.emitter.Emit(sse.NewOrderUpdatedEvent(inf.UserID, order))
	}
}

// ownedProfiles returns the live profiles managed by userID.
func (s *OrderService) ownedProfiles(ctx context.Context, userID string) ([]*domain.Influencer, error) {
	all, err := s.store.ListInfluencers(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(inf *domain.Influencer) bool { return inf.UserID != userID }), nil
}
