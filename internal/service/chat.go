package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/id"
	"github.com/reachlyapp/reachly-server/internal/sse"
	"github.com/reachlyapp/reachly-server/internal/store"
)

const previewLength = 140

// ChatService carries the conversation attached to each order.
type ChatService struct {
	orders        *OrderService
	store         store.Store
	notifications *NotificationService
	emitter       store.EventEmitter
	logger        *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(
	store store.Store,
	orders *OrderService,
	notifications *NotificationService,
	emitter store.EventEmitter,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		orders:        orders,
		store:         store,
		notifications: notifications,
		emitter:       emitter,
		logger:        logger,
	}
}

// SendMessageRequest is a chat message body.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Send posts a message on an order and tells the other party.
func (s *ChatService) Send(ctx context.Context, actor *domain.User, orderID string, req SendMessageRequest) (*domain.Message, error) {
	req.Body = strings.TrimSpace(req.Body)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	order, inf, err := s.participantOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	messageID, err := id.Generate(id.PrefixMessage)
	if err != nil {
		return nil, fmt.Errorf("generate message ID: %w", err)
	}
	msg := &domain.Message{
		ID:        messageID,
		OrderID:   order.ID,
		SenderID:  actor.ID,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if to := counterparty(actor.ID, order, inf); to != "" && to != actor.ID {
		s.emitter.Emit(sse.NewMessageCreatedEvent(to, msg))
		s.notifications.notify(ctx, to, domain.NotifyMessageReceived,
			"New message from "+actor.Name(), preview(msg.Body), orderLink(order.ID))
	}
	return msg, nil
}

// List returns an order's messages, oldest first.
func (s *ChatService) List(ctx context.Context, actor *domain.User, orderID string) ([]*domain.Message, error) {
	if _, _, err := s.participantOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return msgs, nil
}

func (s *ChatService) participantOrder(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, *domain.Influencer, error) {
	if err := requireUser(actor); err != nil {
		return nil, nil, err
	}
	order, inf, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !participant(actor, order, inf) {
		return nil, nil, domainerrors.NotFound("order not found")
	}
	return order, inf, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewLength {
		return body
	}
	return string(r[:previewLength-1]) + "…"
}
