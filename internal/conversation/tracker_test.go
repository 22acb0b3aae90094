package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func seedClient(t *testing.T, st *memstore.Store) string {
	t.Helper()
	row, err := st.CreateClient(context.Background(), sqlc.CreateClientParams{Source: "telegram", Status: "new"})
	require.NoError(t, err)
	return db.UUIDString(row.ID)
}

func TestResolveCreatesOnce(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	tr := NewTracker(nil, st)
	clientID := seedClient(t, st)

	first, err := tr.Resolve(context.Background(), "telegram", "42", clientID)
	require.NoError(t, err)
	assert.Equal(t, clientID, first.ClientID)
	assert.Equal(t, "42", first.PlatformConversationID)

	again, err := tr.Resolve(context.Background(), "telegram", "42", clientID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, st.Counts().Conversations)
}

func TestResolveNeverMovesConversation(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	tr := NewTracker(nil, st)
	owner := seedClient(t, st)
	other := seedClient(t, st)

	conv, err := tr.Resolve(context.Background(), "telegram", "-1001", owner)
	require.NoError(t, err)
	got, err := tr.Resolve(context.Background(), "telegram", "-1001", other)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, owner, got.ClientID)
}

// racingStore hides the first lookup so the insert hits the unique key.
type racingStore struct {
	*memstore.Store
	misses int
}

func (r *racingStore) GetConversationByExternal(ctx context.Context, arg sqlc.GetConversationByExternalParams) (sqlc.Conversation, error) {
	if r.misses > 0 {
		r.misses--
		_, err := r.Store.GetConversationByExternal(ctx, sqlc.GetConversationByExternalParams{Platform: "none"})
		return sqlc.Conversation{}, err
	}
	return r.Store.GetConversationByExternal(ctx, arg)
}

func TestResolveConflictRequeries(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	clientID := seedClient(t, st)
	winner, err := NewTracker(nil, st).Resolve(context.Background(), "telegram", "42", clientID)
	require.NoError(t, err)

	got, err := NewTracker(nil, &racingStore{Store: st, misses: 1}).Resolve(context.Background(), "telegram", "42", seedClient(t, st))
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, clientID, got.ClientID)
}

func TestResolveValidation(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil, memstore.New())
	_, err := tr.Resolve(context.Background(), "telegram", "", "x")
	require.ErrorIs(t, err, ErrInvalidConversation)
	_, err = tr.Resolve(context.Background(), "telegram", "42", "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidConversation)
}

func TestTouchSetsReadFlag(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	tr := NewTracker(nil, st)
	conv, err := tr.Resolve(context.Background(), "telegram", "42", seedClient(t, st))
	require.NoError(t, err)

	require.NoError(t, tr.Touch(context.Background(), conv.ID, true))
	row, err := st.GetConversationByExternal(context.Background(), sqlc.GetConversationByExternalParams{Platform: "telegram", PlatformConversationID: "42"})
	require.NoError(t, err)
	assert.False(t, row.IsRead)
	assert.True(t, row.LastMessageAt.Time.After(db.TimeFromPg(row.CreatedAt)))

	require.NoError(t, tr.Touch(context.Background(), conv.ID, false))
	row, err = st.GetConversationByExternal(context.Background(), sqlc.GetConversationByExternalParams{Platform: "telegram", PlatformConversationID: "42"})
	require.NoError(t, err)
	assert.True(t, row.IsRead)

	st.Fail("TouchConversation", errors.New("boom"))
	require.Error(t, tr.Touch(context.Background(), conv.ID, true))
	require.ErrorIs(t, tr.Touch(context.Background(), "bad", true), ErrInvalidConversation)
}
