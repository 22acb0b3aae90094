package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type fixture struct {
	svc          *DBService
	st           *memstore.Store
	clientID     string
	conversation string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memstore.New()
	client, err := st.CreateClient(context.Background(), sqlc.CreateClientParams{Name: db.Text("Aziz"), Source: "telegram", Status: "new"})
	require.NoError(t, err)
	conv, err := st.CreateConversation(context.Background(), sqlc.CreateConversationParams{ClientID: client.ID, Platform: "telegram", PlatformConversationID: "42"})
	require.NoError(t, err)
	svc := NewService(nil, st)
	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return fixture{svc: svc, st: st, clientID: db.UUIDString(client.ID), conversation: db.UUIDString(conv.ID)}
}

func (f fixture) inbound(id, text string) PersistInput {
	return PersistInput{
		ConversationID: f.conversation, ClientID: f.clientID, Platform: "telegram",
		PlatformMessageID: id, Content: text, Inbound: true, SenderName: "Aziz", SenderID: "42",
	}
}

func TestPersistInboundAndDuplicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	msg, err := f.svc.Persist(context.Background(), f.inbound("42_1", "Salom"))
	require.NoError(t, err)
	assert.Equal(t, "text", msg.MessageType)
	assert.True(t, msg.IsInbound)
	assert.False(t, msg.IsRead)
	assert.Equal(t, "Salom", msg.Content)

	exists, err := f.svc.Exists(context.Background(), "telegram", "42_1")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.svc.Persist(context.Background(), f.inbound("42_1", "Salom"))
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, f.st.Counts().Messages)
}

func TestPersistOutboundRecordsReply(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	staff := db.UUIDString(db.NewUUID())
	msg, err := f.svc.Persist(context.Background(), PersistInput{
		ConversationID: f.conversation, ClientID: f.clientID, Platform: "telegram",
		PlatformMessageID: "42_2", Content: "Ertaga keling", RepliedBy: staff,
	})
	require.NoError(t, err)
	assert.False(t, msg.IsInbound)
	assert.True(t, msg.IsRead)
	assert.Equal(t, staff, msg.RepliedBy)
	require.NotNil(t, msg.RepliedAt)
}

func TestPersistValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	in := f.inbound("", "x")
	_, err := f.svc.Persist(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalid)

	in = f.inbound("1", "x")
	in.ConversationID = "nope"
	_, err = f.svc.Persist(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestListMessagesChronological(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for _, id := range []string{"a", "b", "c"} {
		_, err := f.svc.Persist(context.Background(), f.inbound(id, id))
		require.NoError(t, err)
	}
	msgs, err := f.svc.ListMessages(context.Background(), f.conversation)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})

	_, err = f.svc.ListMessages(context.Background(), db.UUIDString(db.NewUUID()))
	require.ErrorIs(t, err, conversation.ErrConversationNotFound)
}

func TestPersistUsesPlatformTimestamp(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sent := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	late := f.inbound("late", "sent first, delivered second")
	late.ReceivedAt = sent
	_, err := f.svc.Persist(context.Background(), f.inbound("live", "live"))
	require.NoError(t, err)
	msg, err := f.svc.Persist(context.Background(), late)
	require.NoError(t, err)
	assert.Equal(t, sent, msg.CreatedAt.UTC())

	msgs, err := f.svc.ListMessages(context.Background(), f.conversation)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "late", msgs[0].PlatformMessageID)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Persist(context.Background(), f.inbound("a", "hi"))
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkRead(context.Background(), f.conversation))

	msgs, err := f.svc.ListMessages(context.Background(), f.conversation)
	require.NoError(t, err)
	assert.True(t, msgs[0].IsRead)

	inbox, err := f.svc.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].IsRead)
	assert.Equal(t, "Aziz", inbox[0].ClientName)
	assert.Equal(t, "new", inbox[0].ClientStatus)
}

func TestListConversationsNewestActivityFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	row, err := f.st.GetConversationByExternal(context.Background(), sqlc.GetConversationByExternalParams{Platform: "telegram", PlatformConversationID: "42"})
	require.NoError(t, err)
	other, err := f.st.CreateConversation(context.Background(), sqlc.CreateConversationParams{ClientID: row.ClientID, Platform: "telegram", PlatformConversationID: "43"})
	require.NoError(t, err)
	require.NoError(t, f.st.TouchConversation(context.Background(), sqlc.TouchConversationParams{ID: row.ID}))

	inbox, err := f.svc.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, f.conversation, inbox[0].ID)
	assert.Equal(t, db.UUIDString(other.ID), inbox[1].ID)
}
