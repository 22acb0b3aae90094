package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type fakeReplier struct {
	replies []channel.CommentReply
	err     error
}

func (f *fakeReplier) Type() channel.ChannelType { return channel.ChannelYouTube }
func (f *fakeReplier) Descriptor() channel.Descriptor {
	return channel.Descriptor{Type: channel.ChannelYouTube, Capabilities: channel.Capabilities{CommentReply: true}}
}
func (f *fakeReplier) ReplyToComment(_ context.Context, _ channel.Config, r channel.CommentReply) (channel.SendResult, error) {
	if f.err != nil {
		return channel.SendResult{}, f.err
	}
	f.replies = append(f.replies, r)
	return channel.SendResult{ExternalID: "reply-1"}, nil
}

type staticConfigs struct{ err error }

func (s staticConfigs) ActiveConfig(_ context.Context, ct channel.ChannelType) (channel.Config, error) {
	if s.err != nil {
		return channel.Config{}, s.err
	}
	return channel.Config{Channel: ct, Credentials: map[string]any{"accessToken": "t"}}, nil
}

func newTestService(t *testing.T, replier *fakeReplier, configs channel.ConfigProvider) (*Service, *memstore.Store, string) {
	t.Helper()
	st := memstore.New()
	reg := channel.NewRegistry()
	require.NoError(t, reg.Register(replier))
	client, err := st.CreateClient(context.Background(), sqlc.CreateClientParams{Source: "youtube", Status: "new"})
	require.NoError(t, err)
	svc := NewService(nil, st, reg, configs)
	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, st, db.UUIDString(client.ID)
}

func persistInput(clientID, id string) PersistInput {
	return PersistInput{
		ClientID: clientID, Platform: "youtube", PlatformCommentID: id, PostID: "vid1",
		PostURL: "https://www.youtube.com/watch?v=vid1", Content: "Narxi qancha?", AuthorName: "Dilnoza", AuthorID: "UC_dil",
	}
}

func TestPersistAndDuplicate(t *testing.T) {
	t.Parallel()

	svc, st, clientID := newTestService(t, &fakeReplier{}, staticConfigs{})
	c, err := svc.Persist(context.Background(), persistInput(clientID, "c1"))
	require.NoError(t, err)
	assert.Equal(t, "vid1", c.PostID)
	assert.False(t, c.Replied)

	_, err = svc.Persist(context.Background(), persistInput(clientID, "c1"))
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, st.Counts().Comments)

	reply := persistInput(clientID, "c1.r1")
	reply.ParentCommentID = "c1"
	r, err := svc.Persist(context.Background(), reply)
	require.NoError(t, err)
	assert.Equal(t, "c1", r.ParentCommentID)
}

func TestListFiltersAndLimit(t *testing.T) {
	t.Parallel()

	svc, _, clientID := newTestService(t, &fakeReplier{}, staticConfigs{})
	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Persist(context.Background(), persistInput(clientID, id))
		require.NoError(t, err)
	}
	all, err := svc.List(context.Background(), ListFilter{Platform: "YouTube"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].PlatformCommentID)

	limited, err := svc.List(context.Background(), ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := svc.List(context.Background(), ListFilter{Platform: "telegram"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListOrdersByPublishedAt(t *testing.T) {
	t.Parallel()

	svc, _, clientID := newTestService(t, &fakeReplier{}, staticConfigs{})
	published := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	older := persistInput(clientID, "older")
	older.PublishedAt = published
	newer := persistInput(clientID, "newer")
	newer.PublishedAt = published.Add(time.Hour)

	// A backfill delivers the newer comment first.
	_, err := svc.Persist(context.Background(), newer)
	require.NoError(t, err)
	c, err := svc.Persist(context.Background(), older)
	require.NoError(t, err)
	assert.Equal(t, published, c.CreatedAt.UTC())

	all, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"newer", "older"}, []string{all[0].PlatformCommentID, all[1].PlatformCommentID})
}

func TestReplyRecordsAudit(t *testing.T) {
	t.Parallel()

	replier := &fakeReplier{}
	svc, _, clientID := newTestService(t, replier, staticConfigs{})
	c, err := svc.Persist(context.Background(), persistInput(clientID, "c1"))
	require.NoError(t, err)
	staff := db.UUIDString(db.NewUUID())

	updated, err := svc.Reply(context.Background(), c.ID, " Rahmat! ", staff)
	require.NoError(t, err)
	assert.True(t, updated.Replied)
	assert.True(t, updated.IsRead)
	assert.Equal(t, staff, updated.RepliedBy)
	assert.Equal(t, "Rahmat!", updated.ReplyContent)
	require.Len(t, replier.replies, 1)
	assert.Equal(t, channel.CommentReply{CommentID: "c1", PostID: "vid1", Text: "Rahmat!"}, replier.replies[0])
}

func TestReplyErrors(t *testing.T) {
	t.Parallel()

	replier := &fakeReplier{err: errors.New("quota exceeded")}
	svc, st, clientID := newTestService(t, replier, staticConfigs{})
	c, err := svc.Persist(context.Background(), persistInput(clientID, "c1"))
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), c.ID, "hi", "")
	require.ErrorIs(t, err, ErrReplyFailed)
	row, err := st.GetCommentByID(context.Background(), mustUUID(t, c.ID))
	require.NoError(t, err)
	assert.False(t, row.Replied, "failed reply is not recorded")

	_, err = svc.Reply(context.Background(), db.UUIDString(db.NewUUID()), "hi", "")
	require.ErrorIs(t, err, ErrCommentNotFound)
	_, err = svc.Reply(context.Background(), c.ID, " ", "")
	require.ErrorIs(t, err, ErrInvalid)

	tg := persistInput(clientID, "tg1")
	tg.Platform = "telegram"
	tgComment, err := svc.Persist(context.Background(), tg)
	require.NoError(t, err)
	_, err = svc.Reply(context.Background(), tgComment.ID, "hi", "")
	require.ErrorIs(t, err, ErrReplyUnsupported)
}

func TestReplyWithoutConfig(t *testing.T) {
	t.Parallel()

	svc, _, clientID := newTestService(t, &fakeReplier{}, staticConfigs{err: channel.ErrConfigNotFound})
	c, err := svc.Persist(context.Background(), persistInput(clientID, "c1"))
	require.NoError(t, err)
	_, err = svc.Reply(context.Background(), c.ID, "hi", "")
	require.ErrorIs(t, err, channel.ErrConfigNotFound)
	require.ErrorIs(t, err, ErrReplyFailed)
}

func mustUUID(t *testing.T, id string) pgtype.UUID {
	t.Helper()
	v, err := db.ParseUUID(id)
	require.NoError(t, err)
	return v
}
