package branches

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
)

func TestBranchCRUD(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, memstore.New())
	ctx := context.Background()

	b, err := svc.Create(ctx, Input{
		Name:         " Chilonzor ",
		Address:      "Bunyodkor 12",
		WorkingHours: json.RawMessage(`{"Du-Ju":"9:00-18:00","Sha":"10:00-15:00"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chilonzor", b.Name)
	assert.True(t, b.IsActive)
	assert.JSONEq(t, `{"Du-Ju":"9:00-18:00","Sha":"10:00-15:00"}`, string(b.WorkingHours))

	_, err = svc.Create(ctx, Input{Name: "Yunusobod"})
	require.NoError(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Chilonzor", list[0].Name)

	inactive := false
	updated, err := svc.Update(ctx, b.ID, Input{Name: "Chilonzor filiali", SmsTemplate: "Salom {{client_name}}", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Salom {{client_name}}", updated.SmsTemplate)
	assert.False(t, updated.IsActive)
	assert.JSONEq(t, `{}`, string(updated.WorkingHours))

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	require.ErrorIs(t, err, ErrBranchNotFound)
	require.ErrorIs(t, svc.Delete(ctx, b.ID), ErrBranchNotFound)
	_, err = svc.Update(ctx, db.UUIDString(db.NewUUID()), Input{Name: "x"})
	require.ErrorIs(t, err, ErrBranchNotFound)
}

func TestBranchValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, memstore.New())
	_, err := svc.Create(context.Background(), Input{Name: "x", WorkingHours: json.RawMessage(`["mon"]`)})
	require.ErrorIs(t, err, ErrInvalidBranch)
	_, err = svc.Create(context.Background(), Input{Name: "  "})
	require.ErrorIs(t, err, ErrInvalidBranch)
}

func TestFormatHoursKeepsOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Du-Ju: 9:00-18:00, Sha: 10:00-15:00, Yak: dam",
		FormatHours([]byte(`{"Du-Ju":"9:00-18:00","Sha":"10:00-15:00","Yak":"dam"}`)))
	assert.Equal(t, "", FormatHours([]byte(`{}`)))
	assert.Equal(t, "", FormatHours(nil))
	assert.Equal(t, "", FormatHours([]byte(`"9-18"`)))
}
