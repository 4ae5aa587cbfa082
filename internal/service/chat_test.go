package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/domain"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
	"github.com/reachlyapp/reachly-server/internal/sse"
)

func TestChatService_SendAndList(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.env.topUp(t, f.business, 5_000)
	order := f.place(t)

	msg, err := f.env.chat.Send(ctx, f.business, order.ID, SendMessageRequest{Body: "  Can you post on Friday?  "})
	require.NoError(t, err)
	assert.Equal(t, "Can you post on Friday?", msg.Body)
	assert.Equal(t, f.business.ID, msg.SenderID)

	_, err = f.env.chat.Send(ctx, f.creator, order.ID, SendMessageRequest{Body: "Friday works."})
	require.NoError(t, err)

	msgs, err := f.env.chat.List(ctx, f.creator, order.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, msg.ID, msgs[0].ID)

	events := f.env.emitter.ofType(sse.EventMessageCreated)
	require.Len(t, events, 2)
	assert.Equal(t, f.creator.ID, events[0].UserID)
	assert.Equal(t, f.business.ID, events[1].UserID)

	notes, err := f.env.notifications.List(ctx, f.creator, true, 0)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, domain.NotifyMessageReceived, notes[0].Kind)
}

func TestChatService_Access(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.env.topUp(t, f.business, 5_000)
	order := f.place(t)

	outsider := f.env.createUser(t, domain.RoleInfluencer)
	_, err := f.env.chat.Send(ctx, outsider, order.ID, SendMessageRequest{Body: "hi"})
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(err))

	_, err = f.env.chat.List(ctx, outsider, order.ID)
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(err))

	_, err = f.env.chat.Send(ctx, f.business, order.ID, SendMessageRequest{Body: "   "})
	assert.Equal(t, domainerrors.CodeValidation, codeOf(err))

	_, err = f.env.chat.List(ctx, f.business, "ord-missing")
	assert.Equal(t, domainerrors.CodeNotFound, codeOf(err))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := strings.Repeat("é", previewLength+10)
	p := preview(long)
	assert.Len(t, []rune(p), previewLength)
	assert.True(t, strings.HasSuffix(p, "…"))
}
