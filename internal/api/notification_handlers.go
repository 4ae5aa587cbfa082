package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns the caller's notifications, newest first, with the unread count",
		Tags:        []string{"Notifications"},
		Security:    bearerSecurity,
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark notification read",
		Tags:        []string{"Notifications"},
		Security:    bearerSecurity,
	}, s.handleMarkNotificationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark all notifications read",
		Tags:        []string{"Notifications"},
		Security:    bearerSecurity,
	}, s.handleMarkAllNotificationsRead)
}

// === DTOs ===

// ListNotificationsInput filters the caller's notifications.
type ListNotificationsInput struct {
	AuthenticatedInput
	UnreadOnly bool `query:"unread" doc:"Only unread notifications"`
	Limit      int  `query:"limit" minimum:"0" maximum:"200" doc:"Maximum entries (default 50)"`
}

// NotificationListResponse lists notifications.
type NotificationListResponse struct {
	Items       []*domain.Notification `json:"items" doc:"Notifications, newest first"`
	UnreadCount int                    `json:"unread_count" doc:"Unread notifications in total"`
}

// NotificationListOutput wraps the notification list for Huma.
type NotificationListOutput struct {
	Body NotificationListResponse
}

// NotificationIDInput identifies a notification.
type NotificationIDInput struct {
	AuthenticatedInput
	ID string `path:"id" doc:"Notification ID"`
}

// NotificationOutput wraps a notification for Huma.
type NotificationOutput struct {
	Body *domain.Notification
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Marked int `json:"marked" doc:"Notifications marked read"`
}

// MarkAllReadOutput wraps the mark-all result for Huma.
type MarkAllReadOutput struct {
	Body MarkAllReadResponse
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, input *ListNotificationsInput) (*NotificationListOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	items, err := s.services.Notifications.List(ctx, user, input.UnreadOnly, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.services.Notifications.UnreadCount(ctx, user)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return &NotificationListOutput{Body: NotificationListResponse{Items: items, UnreadCount: unread}}, nil
}

func (s *Server) handleMarkNotificationRead(ctx context.Context, input *NotificationIDInput) (*NotificationOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Notifications.MarkRead(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}
	return &NotificationOutput{Body: n}, nil
}

func (s *Server) handleMarkAllNotificationsRead(ctx context.Context, _ *AuthenticatedInput) (*MarkAllReadOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	marked, err := s.services.Notifications.MarkAllRead(ctx, user)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadOutput{Body: MarkAllReadResponse{Marked: marked}}, nil
}
