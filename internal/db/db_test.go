package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoustichub/crm/internal/config"
)

func TestParseUUIDRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := ParseUUID(" 6f1c1f7e-8f35-4a51-9d7b-2a4b5f3c1e10 ")
	require.NoError(t, err)
	assert.True(t, id.Valid)
	assert.Equal(t, "6f1c1f7e-8f35-4a51-9d7b-2a4b5f3c1e10", UUIDString(id))

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}

func TestOptionalUUID(t *testing.T) {
	t.Parallel()

	id, err := OptionalUUID("")
	require.NoError(t, err)
	assert.False(t, id.Valid)
	assert.Equal(t, "", UUIDString(id))
}

func TestTextHelpers(t *testing.T) {
	t.Parallel()

	assert.False(t, Text("   ").Valid)
	assert.Equal(t, pgtype.Text{String: "ok", Valid: true}, Text(" ok "))
	assert.False(t, TextPtr(nil).Valid)
	assert.Equal(t, "", TextValue(pgtype.Text{}))
}

func TestTimeHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, TimeFromPg(pgtype.Timestamptz{}).IsZero())
	assert.Nil(t, TimePtrFromPg(pgtype.Timestamptz{}))
	now := time.Now()
	assert.Equal(t, now, *TimePtrFromPg(Timestamptz(now)))
	assert.False(t, Timestamptz(time.Time{}).Valid)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestMigrateURLUsesPgx5Scheme(t *testing.T) {
	t.Parallel()

	cfg := config.PostgresConfig{Host: "db", Port: 5432, User: "crm", Password: "pw", Database: "crm", SSLMode: "disable"}
	assert.Equal(t, "pgx5://crm:pw@db:5432/crm?sslmode=disable", migrateURL(cfg))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	t.Parallel()

	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "0001_init.up.sql")
	assert.Contains(t, names, "0001_init.down.sql")
}
