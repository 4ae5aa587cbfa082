package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/service"
)

// orderAction is a status change a participant can request.
type orderAction struct {
	name    string
	summary string
	desc    string
	apply   func(context.Context, *domain.User, string) (*domain.Order, error)
}

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "placeOrder",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders",
		Summary:       "Place order",
		Description:   "Orders one post from an influencer. The price is held in escrow from the business wallet.",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handlePlaceOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Businesses see orders they placed, influencers orders for their profiles. Admins must pass influencer_id.",
		Tags:        []string{"Orders"},
		Security:    bearerSecurity,
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Description: "Returns an order the caller takes part in",
		Tags:        []string{"Orders"},
		Security:    bearerSecurity,
	}, s.handleGetOrder)

	actions := []orderAction{
		{"accept", "Accept order", "Influencer accepts a pending order", s.services.Orders.Accept},
		{"reject", "Reject order", "Influencer rejects a pending order; the escrow is refunded", s.services.Orders.Reject},
		{"complete", "Complete order", "Business confirms delivery; the escrow is paid out to the influencer", s.services.Orders.Complete},
		{"cancel", "Cancel order", "Business cancels a pending order; the escrow is refunded", s.services.Orders.Cancel},
	}
	for _, a := range actions {
		huma.Register(s.api, huma.Operation{
			OperationID: a.name + "Order",
			Method:      http.MethodPost,
			Path:        "/api/v1/orders/{id}/" + a.name,
			Summary:     a.summary,
			Description: a.desc,
			Tags:        []string{"Orders"},
			Security:    bearerSecurity,
		}, s.orderActionHandler(a))
	}
}

// === DTOs ===

// PlaceOrderRequest is the request body for placing an order.
type PlaceOrderRequest struct {
	InfluencerID string `json:"influencer_id" doc:"Influencer to order from"`
	Platform     string `json:"platform" enum:"instagram,facebook,youtube,twitter" doc:"Platform to post on"`
	Brief        string `json:"brief" maxLength:"4000" doc:"What the post should cover"`
}

// PlaceOrderInput wraps the place order request for Huma.
type PlaceOrderInput struct {
	AuthenticatedInput
	Body PlaceOrderRequest
}

// ListOrdersInput filters the caller's orders.
type ListOrdersInput struct {
	AuthenticatedInput
	InfluencerID string `query:"influencer_id" doc:"Only orders for this influencer"`
	Status       string `query:"status" enum:"pending,accepted,rejected,completed,cancelled" doc:"Only orders in this status"`
}

// OrderIDInput identifies an order.
type OrderIDInput struct {
	AuthenticatedInput
	ID string `path:"id" doc:"Order ID"`
}

// OrderOutput wraps an order for Huma.
type OrderOutput struct {
	Body *domain.Order
}

// OrderListResponse lists orders, newest first.
type OrderListResponse struct {
	Items []*domain.Order `json:"items" doc:"Orders"`
}

// OrderListOutput wraps the order list for Huma.
type OrderListOutput struct {
	Body OrderListResponse
}

// === Handlers ===

func (s *Server) handlePlaceOrder(ctx context.Context, input *PlaceOrderInput) (*OrderOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Orders.Place(ctx, user, service.PlaceOrderRequest{
		InfluencerID: input.Body.InfluencerID,
		Platform:     discovery.Platform(input.Body.Platform),
		Brief:        input.Body.Brief,
	})
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: order}, nil
}

func (s *Server) handleListOrders(ctx context.Context, input *ListOrdersInput) (*OrderListOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Orders.List(ctx, user, service.ListOrdersRequest{
		InfluencerID: input.InfluencerID,
		Status:       domain.OrderStatus(input.Status),
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return &OrderListOutput{Body: OrderListResponse{Items: orders}}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Orders.Get(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: order}, nil
}

func (s *Server) orderActionHandler(a orderAction) func(context.Context, *OrderIDInput) (*OrderOutput, error) {
	return func(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
		user, err := RequireUser(ctx)
		if err != nil {
			return nil, err
		}

		order, err := a.apply(ctx, user, input.ID)
		if err != nil {
			return nil, err
		}
		return &OrderOutput{Body: order}, nil
	}
}
