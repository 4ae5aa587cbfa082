package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reachlyapp/reachly-server/internal/domain"
	"github.com/reachlyapp/reachly-server/internal/store"
)

func TestMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "usr-biz", domain.RoleBusiness)
	mustCreateInfluencer(t, s, "inf-1")
	if err := s.CreateOrder(ctx, makeTestOrder("ord-1", "usr-biz", "inf-1", 100)); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	base := time.Now()
	for i, body := range []string{"hello", "brief attached", "thanks"} {
		msg := &domain.Message{
			ID:        "msg-" + body,
			OrderID:   "ord-1",
			SenderID:  "usr-biz",
			Body:      body,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := s.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}

	msgs, err := s.ListMessages(ctx, "ord-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Body != "hello" || msgs[2].Body != "thanks" {
		t.Errorf("expected chat in write order, got %d messages", len(msgs))
	}

	orphan := &domain.Message{ID: "msg-x", OrderID: "ord-missing", SenderID: "usr-biz", Body: "?", CreatedAt: base}
	if err := s.CreateMessage(ctx, orphan); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing order, got %v", err)
	}
}
