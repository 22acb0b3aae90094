package outbound

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/channel/adapters/manual"
	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
	messagepkg "github.com/acoustichub/crm/internal/message"
)

type fakeSender struct {
	sent []channel.OutboundMessage
	cfgs []channel.Config
	err  error
}

func (f *fakeSender) Type() channel.ChannelType { return channel.ChannelTelegram }
func (f *fakeSender) Descriptor() channel.Descriptor {
	return channel.Descriptor{Type: channel.ChannelTelegram, Capabilities: channel.Capabilities{Send: true}}
}

func (f *fakeSender) Send(_ context.Context, cfg channel.Config, msg channel.OutboundMessage) (channel.SendResult, error) {
	if f.err != nil {
		return channel.SendResult{}, f.err
	}
	f.sent = append(f.sent, msg)
	f.cfgs = append(f.cfgs, cfg)
	return channel.SendResult{ExternalID: msg.Target + "_900"}, nil
}

type staticConfigs struct{ err error }

func (s staticConfigs) ActiveConfig(_ context.Context, ct channel.ChannelType) (channel.Config, error) {
	if s.err != nil {
		return channel.Config{}, s.err
	}
	return channel.Config{Channel: ct, Credentials: map[string]any{"botToken": "t"}}, nil
}

type fixture struct {
	dispatcher *Dispatcher
	store      *memstore.Store
	messages   *messagepkg.DBService
	sender     *fakeSender
}

func newFixture(t *testing.T, configs channel.ConfigProvider) fixture {
	t.Helper()
	st := memstore.New()
	reg := channel.NewRegistry()
	sender := &fakeSender{}
	require.NoError(t, reg.Register(sender))
	messages := messagepkg.NewService(nil, st)
	d := NewDispatcher(nil, st, reg, manual.NewAdapter(), configs, messages, conversation.NewTracker(nil, st))
	return fixture{dispatcher: d, store: st, messages: messages, sender: sender}
}

func (f fixture) conversation(t *testing.T, platform, externalID string) string {
	t.Helper()
	ctx := context.Background()
	client, err := f.store.CreateClient(ctx, sqlc.CreateClientParams{Source: platform, Status: "new"})
	require.NoError(t, err)
	conv, err := f.store.CreateConversation(ctx, sqlc.CreateConversationParams{
		ClientID: client.ID, Platform: platform, PlatformConversationID: externalID,
	})
	require.NoError(t, err)
	return db.UUIDString(conv.ID)
}

func TestSendReplyDeliversAndRecords(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticConfigs{})
	ctx := context.Background()
	convID := f.conversation(t, "telegram", "42")
	staff := db.UUIDString(db.NewUUID())

	msg, err := f.dispatcher.SendReply(ctx, convID, "  Ertaga soat 10 da kuting ", staff)
	require.NoError(t, err)
	assert.False(t, msg.IsInbound)
	assert.True(t, msg.IsRead)
	assert.Equal(t, "42_900", msg.PlatformMessageID)
	assert.Equal(t, staff, msg.RepliedBy)
	assert.Equal(t, "Ertaga soat 10 da kuting", msg.Content)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "42", f.sender.sent[0].Target)
	assert.Equal(t, "t", f.sender.cfgs[0].Credential("botToken"))

	id, _ := db.ParseUUID(convID)
	conv, err := f.store.GetConversationByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, conv.IsRead)

	logs, err := f.dispatcher.Logs(ctx, convID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, StatusSent, logs[0].Status)
	assert.Equal(t, "42_900", logs[0].PlatformMessageID)
	assert.Equal(t, staff, logs[0].SentBy)
}

func TestSendReplyFailureIsAudited(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticConfigs{})
	f.sender.err = errors.New("Forbidden: bot was blocked by the user")
	ctx := context.Background()
	convID := f.conversation(t, "telegram", "42")

	_, err := f.dispatcher.SendReply(ctx, convID, "salom", "")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 0, f.store.Counts().Messages)

	logs, err := f.dispatcher.Logs(ctx, convID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, StatusFailed, logs[0].Status)
	assert.Contains(t, logs[0].ErrorMessage, "blocked")
}

func TestSendReplyWithoutConfigFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticConfigs{err: channel.ErrConfigNotFound})
	convID := f.conversation(t, "telegram", "42")

	_, err := f.dispatcher.SendReply(context.Background(), convID, "salom", "")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.ErrorIs(t, err, channel.ErrConfigNotFound)
	assert.Equal(t, 1, f.store.Counts().DispatchLogs)
}

func TestSendReplyFallsBackToManual(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticConfigs{err: errors.New("must not be consulted")})
	convID := f.conversation(t, "instagram", "ig_thread_1")

	msg, err := f.dispatcher.SendReply(context.Background(), convID, "Rahmat!", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.PlatformMessageID, "out-"), msg.PlatformMessageID)
	assert.Empty(t, f.sender.sent)

	list, err := f.messages.ListMessages(context.Background(), convID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSendReplyValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticConfigs{})
	convID := f.conversation(t, "telegram", "42")

	_, err := f.dispatcher.SendReply(context.Background(), convID, "   ", "")
	require.ErrorIs(t, err, ErrInvalidReply)
	_, err = f.dispatcher.SendReply(context.Background(), "x", "hi", "")
	require.ErrorIs(t, err, ErrInvalidReply)
	_, err = f.dispatcher.SendReply(context.Background(), db.UUIDString(db.NewUUID()), "hi", "")
	require.ErrorIs(t, err, conversation.ErrConversationNotFound)
	assert.Equal(t, 0, f.store.Counts().DispatchLogs)
}
