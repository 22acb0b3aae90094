package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func newTestResolver() (*Resolver, *memstore.Store) {
	st := memstore.New()
	return NewResolver(nil, st, memstore.NewTx(st, func(s *memstore.Store) TxStore { return s })), st
}

func TestResolveCreatesClientOnFirstContact(t *testing.T) {
	t.Parallel()

	r, st := newTestResolver()
	client, err := r.Resolve(context.Background(), "telegram", "42", channel.Identity{
		Username: "aziz", DisplayName: "Aziz Karimov", ProfileURL: "https://t.me/aziz",
	})
	require.NoError(t, err)
	assert.Equal(t, "Aziz Karimov", client.Name)
	assert.Equal(t, "telegram", client.Source)
	assert.Equal(t, "new", client.Status)

	ch, err := st.GetChannelByPlatformUser(context.Background(), sqlc.GetChannelByPlatformUserParams{Platform: "telegram", UserID: "42"})
	require.NoError(t, err)
	assert.True(t, ch.IsPrimary)
	assert.Equal(t, "aziz", ch.Username.String)
	assert.Equal(t, client.ID, db.UUIDString(ch.ClientID))
}

func TestResolveIsFirstWriteWins(t *testing.T) {
	t.Parallel()

	r, st := newTestResolver()
	first, err := r.Resolve(context.Background(), "youtube", "UC_1", channel.Identity{DisplayName: "Dilnoza"})
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "youtube", "UC_1", channel.Identity{DisplayName: "Renamed"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Dilnoza", second.Name, "hints are not applied to existing clients")
	assert.Equal(t, 1, st.Counts().Clients)
	assert.Equal(t, 1, st.Counts().Channels)
}

func TestResolveSamePersonDifferentPlatforms(t *testing.T) {
	t.Parallel()

	r, st := newTestResolver()
	a, err := r.Resolve(context.Background(), "telegram", "42", channel.Identity{})
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), "youtube", "42", channel.Identity{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Telegram 42", a.Name)
	assert.Equal(t, 2, st.Counts().Clients)
}

func TestResolveValidation(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver()
	_, err := r.Resolve(context.Background(), "myspace", "1", channel.Identity{})
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
	_, err = r.Resolve(context.Background(), "eskiz_sms", "1", channel.Identity{})
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
	_, err = r.Resolve(context.Background(), "telegram", "  ", channel.Identity{})
	require.ErrorIs(t, err, ErrMissingUserID)
}

func TestResolveConcurrentCallsCreateOneClient(t *testing.T) {
	t.Parallel()

	r, st := newTestResolver()
	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := r.Resolve(context.Background(), "telegram", "group_-1001", channel.Identity{DisplayName: "Guruh -1001"})
			if err == nil {
				ids[i] = client.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, st.Counts().Clients)
	assert.Equal(t, 1, st.Counts().Channels)
}

// racingStore reports no channel on the first lookup, as if a concurrent
// writer inserted it between the lookup and the insert.
type racingStore struct {
	*memstore.Store
	once sync.Once
}

func (r *racingStore) GetChannelByPlatformUser(ctx context.Context, arg sqlc.GetChannelByPlatformUserParams) (sqlc.ClientChannel, error) {
	var miss bool
	r.once.Do(func() { miss = true })
	if miss {
		return sqlc.ClientChannel{}, pgx.ErrNoRows
	}
	return r.Store.GetChannelByPlatformUser(ctx, arg)
}

func TestResolveLosingRaceReturnsWinner(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	winner, err := NewResolver(nil, st, memstore.NewTx(st, func(s *memstore.Store) TxStore { return s })).
		Resolve(context.Background(), "telegram", "42", channel.Identity{DisplayName: "Winner"})
	require.NoError(t, err)

	racing := &racingStore{Store: st}
	r := NewResolver(nil, racing, memstore.NewTx(st, func(s *memstore.Store) TxStore { return s }))
	got, err := r.Resolve(context.Background(), "telegram", "42", channel.Identity{DisplayName: "Loser"})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 1, st.Counts().Clients, "loser's client insert rolled back")
}

func TestResolveRollsBackWhenChannelInsertFails(t *testing.T) {
	t.Parallel()

	r, st := newTestResolver()
	st.Fail("CreateClientChannel", errors.New("disk full"))
	_, err := r.Resolve(context.Background(), "telegram", "42", channel.Identity{})
	require.Error(t, err)
	assert.Equal(t, 0, st.Counts().Clients)
}
