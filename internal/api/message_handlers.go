package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/service"
)

func (s *Server) registerMessageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listOrderMessages",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}/messages",
		Summary:     "List order messages",
		Description: "Returns the order's chat, oldest first",
		Tags:        []string{"Chat"},
		Security:    bearerSecurity,
	}, s.handleListMessages)

	huma.Register(s.api, huma.Operation{
		OperationID:   "sendOrderMessage",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders/{id}/messages",
		Summary:       "Send order message",
		Description:   "Posts a message to the order's chat and notifies the other party",
		Tags:          []string{"Chat"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleSendMessage)
}

// === DTOs ===

// SendMessageRequest is the request body for a chat message.
type SendMessageRequest struct {
	Body string `json:"body" minLength:"1" maxLength:"4000" doc:"Message text"`
}

// SendMessageInput wraps the send message request for Huma.
type SendMessageInput struct {
	AuthenticatedInput
	ID   string `path:"id" doc:"Order ID"`
	Body SendMessageRequest
}

// MessageListResponse is an order's chat.
type MessageListResponse struct {
	Items []*domain.Message `json:"items" doc:"Messages, oldest first"`
}

// MessageListOutput wraps the chat for Huma.
type MessageListOutput struct {
	Body MessageListResponse
}

// ChatMessageOutput wraps one chat message for Huma.
type ChatMessageOutput struct {
	Body *domain.Message
}

// === Handlers ===

func (s *Server) handleListMessages(ctx context.Context, input *OrderIDInput) (*MessageListOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	msgs, err := s.services.Chat.List(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return &MessageListOutput{Body: MessageListResponse{Items: msgs}}, nil
}

func (s *Server) handleSendMessage(ctx context.Context, input *SendMessageInput) (*ChatMessageOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.services.Chat.Send(ctx, user, input.ID, service.SendMessageRequest{Body: input.Body.Body})
	if err != nil {
		return nil, err
	}
	return &ChatMessageOutput{Body: msg}, nil
}
