package kanban

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, seed bool) (*Service, *memstore.Store, *fakeClock) {
	t.Helper()
	st := memstore.New()
	if seed {
		st.SeedDefaultStages()
	}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	st.Now = clock.Now
	svc := NewService(nil, st, memstore.NewTx(st, func(s *memstore.Store) TxStore { return s }))
	svc.now = clock.Now
	return svc, st, clock
}

func newClient(t *testing.T, st *memstore.Store) string {
	t.Helper()
	c, err := st.CreateClient(context.Background(), sqlc.CreateClientParams{Name: db.Text("Aziz"), Source: "telegram", Status: clients.InitialStatus})
	require.NoError(t, err)
	return db.UUIDString(c.ID)
}

func TestTransitionRecordsHistoryWithDuration(t *testing.T) {
	t.Parallel()

	svc, st, clock := newTestService(t, true)
	ctx := context.Background()
	clientID := newClient(t, st)
	staff := db.UUIDString(db.NewUUID())

	c, err := svc.Transition(ctx, clientID, "contacted", staff, "called back")
	require.NoError(t, err)
	assert.Equal(t, "contacted", c.Status)

	clock.Advance(90 * time.Minute)
	c, err = svc.Transition(ctx, clientID, "appointment", staff, "")
	require.NoError(t, err)
	assert.Equal(t, "appointment", c.Status)

	history, err := svc.History(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "contacted", history[0].FromStatus)
	assert.Equal(t, "appointment", history[0].ToStatus)
	assert.Equal(t, int64(5400), history[0].DurationSeconds)
	assert.Equal(t, "new", history[1].FromStatus)
	assert.Equal(t, int64(0), history[1].DurationSeconds)
	assert.Equal(t, "called back", history[1].Notes)
	assert.Equal(t, staff, history[1].ChangedBy)
}

func TestTransitionStampsHistoryWithAppClock(t *testing.T) {
	t.Parallel()

	svc, st, clock := newTestService(t, true)
	ctx := context.Background()
	clientID := newClient(t, st)
	st.Now = func() time.Time { return clock.Now().Add(10 * time.Minute) }

	_, err := svc.Transition(ctx, clientID, "contacted", "", "")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.Transition(ctx, clientID, "appointment", "", "")
	require.NoError(t, err)

	history, err := svc.History(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].CreatedAt.Equal(clock.Now()))
	assert.Equal(t, int64(60), history[0].DurationSeconds)
}

func TestTransitionStageValidation(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t, true)
	ctx := context.Background()
	clientID := newClient(t, st)

	_, err := svc.Transition(ctx, clientID, "vip", "", "")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.Transition(ctx, clientID, "  ", "", "")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Transition(ctx, clientID, "sold", "", "")
	require.NoError(t, err)
	_, err = svc.Transition(ctx, clientID, "new", "", "")
	require.NoError(t, err, "returning to new is always allowed")
	assert.Equal(t, 2, st.Counts().History)
}

func TestTransitionWithoutStagesAcceptsAnySlug(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t, false)
	c, err := svc.Transition(context.Background(), newClient(t, st), "follow_up", "", "")
	require.NoError(t, err)
	assert.Equal(t, "follow_up", c.Status)
}

func TestTransitionRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t, true)
	ctx := context.Background()
	clientID := newClient(t, st)
	st.Fail("UpdateClientStatus", errors.New("connection reset"))

	_, err := svc.Transition(ctx, clientID, "contacted", "", "")
	require.Error(t, err)
	assert.Equal(t, 0, st.Counts().History)

	st.Fail("UpdateClientStatus", nil)
	id, _ := db.ParseUUID(clientID)
	row, err := st.GetClientByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, clients.InitialStatus, row.Status)
}

func TestTransitionUnknownClient(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, true)
	_, err := svc.Transition(context.Background(), db.UUIDString(db.NewUUID()), "sold", "", "")
	require.ErrorIs(t, err, clients.ErrClientNotFound)
	_, err = svc.Transition(context.Background(), "nope", "sold", "", "")
	require.ErrorIs(t, err, clients.ErrInvalidClientID)
	_, err = svc.History(context.Background(), db.UUIDString(db.NewUUID()))
	require.ErrorIs(t, err, clients.ErrClientNotFound)
}

func TestConcurrentTransitionsKeepHistoryChained(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t, true)
	// distinct timestamps keep newest-first ordering unambiguous
	st.Now = nil
	svc.now = time.Now
	ctx := context.Background()
	clientID := newClient(t, st)
	targets := []string{"contacted", "appointment", "sold", "lost", "contacted", "sold"}

	var wg sync.WaitGroup
	for _, status := range targets {
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			_, err := svc.Transition(ctx, clientID, status, "", "")
			assert.NoError(t, err)
		}(status)
	}
	wg.Wait()

	history, err := svc.History(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, history, len(targets))
	for i := 0; i < len(history)-1; i++ {
		assert.Equal(t, history[i+1].ToStatus, history[i].FromStatus, "entry %d must start where the previous ended", i)
	}
	assert.Equal(t, "new", history[len(history)-1].FromStatus)
}

func TestStageCRUD(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	stage, err := svc.CreateStage(ctx, CreateStageInput{Name: "Follow Up"})
	require.NoError(t, err)
	assert.Equal(t, "follow_up", stage.Slug)
	assert.Equal(t, int32(5), stage.Position, "appended after the seeded stages")
	assert.Equal(t, defaultColor, stage.Color)
	assert.True(t, stage.IsActive)

	_, err = svc.CreateStage(ctx, CreateStageInput{Name: "Dup", Slug: "follow_up"})
	require.ErrorIs(t, err, ErrSlugTaken)
	_, err = svc.CreateStage(ctx, CreateStageInput{Name: " "})
	require.ErrorIs(t, err, ErrInvalidStage)

	name := "Qayta aloqa"
	inactive := false
	updated, err := svc.UpdateStage(ctx, stage.ID, UpdateStageInput{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Qayta aloqa", updated.Name)
	assert.Equal(t, "follow_up", updated.Slug)
	assert.False(t, updated.IsActive)

	stages, err := svc.ListStages(ctx)
	require.NoError(t, err)
	assert.Len(t, stages, 5, "inactive stages are hidden")

	require.NoError(t, svc.DeleteStage(ctx, stage.ID))
	require.ErrorIs(t, svc.DeleteStage(ctx, stage.ID), ErrStageNotFound)
	_, err = svc.UpdateStage(ctx, stage.ID, UpdateStageInput{Name: &name})
	require.ErrorIs(t, err, ErrStageNotFound)
}

func TestReorderStages(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, true)
	ctx := context.Background()
	stages, err := svc.ListStages(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(stages))
	for i := len(stages) - 1; i >= 0; i-- {
		ids = append(ids, stages[i].ID)
	}
	reordered, err := svc.ReorderStages(ctx, ids)
	require.NoError(t, err)
	require.Len(t, reordered, len(stages))
	assert.Equal(t, "lost", reordered[0].Slug)
	assert.Equal(t, "new", reordered[len(reordered)-1].Slug)

	_, err = svc.ReorderStages(ctx, []string{stages[0].ID, db.UUIDString(db.NewUUID())})
	require.ErrorIs(t, err, ErrStageNotFound)
	after, err := svc.ListStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, reordered, after, "failed reorder leaves positions untouched")
}

func TestReorderStagesRejectsDuplicates(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, true)
	ctx := context.Background()
	stages, err := svc.ListStages(ctx)
	require.NoError(t, err)

	_, err = svc.ReorderStages(ctx, []string{stages[0].ID, stages[1].ID, stages[0].ID})
	require.ErrorIs(t, err, ErrInvalidStage)
	after, err := svc.ListStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, stages, after)
}

func TestReorderStagesPartialListRenumbers(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, true)
	ctx := context.Background()
	stages, err := svc.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 5)

	reordered, err := svc.ReorderStages(ctx, []string{stages[3].ID})
	require.NoError(t, err)
	slugs := make([]string, 0, len(reordered))
	for i, stage := range reordered {
		assert.Equal(t, int32(i), stage.Position, "positions stay contiguous and unique")
		slugs = append(slugs, stage.Slug)
	}
	assert.Equal(t, []string{"sold", "new", "contacted", "appointment", "lost"}, slugs)
}

func TestTransitionAfterCheckpointKeepsDwell(t *testing.T) {
	t.Parallel()

	svc, st, clock := newTestService(t, true)
	ctx := context.Background()
	clientID := newClient(t, st)
	id, err := db.ParseUUID(clientID)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, clientID, "contacted", "", "")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = st.CreateStatusHistory(ctx, sqlc.CreateStatusHistoryParams{
		ClientID: id, FromStatus: db.Text("contacted"), ToStatus: "contacted", DurationSeconds: 3600, Notes: db.Text("merged"),
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.Transition(ctx, clientID, "appointment", "", "")
	require.NoError(t, err)
	latest, err := st.GetLatestStatusHistory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "appointment", latest.ToStatus)
	assert.Equal(t, int64(3660), latest.DurationSeconds)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "follow_up", Slugify("  Follow  Up "))
	assert.Equal(t, "in-progress", Slugify("In-Progress!"))
	assert.Equal(t, "", Slugify(" !! "))
}
