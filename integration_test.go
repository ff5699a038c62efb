//go:build integration
// +build integration

package dbhandler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and opens a Handler on it
// through Open, so the pgx DSN and session settings are exercised too.
func setupPostgres(t *testing.T) *Handler {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("test pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	h, err := Open(ctx, Config{
		Driver:               DriverPostgres,
		Server:               net.JoinHostPort(host, port.Port()),
		User:                 "testuser",
		Pass:                 "test pass",
		Database:             "testdb",
		Params:               map[string]string{"sslmode": "disable"},
		ConnectRetries:       5,
		ConnectRetryInterval: time.Second,
		Session:              map[string]string{"application_name": "dbhandler-test"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	_, err = h.DB().Exec(`CREATE TABLE users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		score NUMERIC(10,2),
		tags TEXT
	)`)
	require.NoError(t, err)

	return h
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := setupPostgres(t)

	name := `it's "quoted" \ here`
	id := h.InsertData(ctx, "users", Fields{F("name", name), F("tags", "a:b ?")})
	require.NotZero(t, id)

	rows := h.GetTableData(ctx, "users", 10, 0, Eq("id", id))
	require.Len(t, rows, 1)
	assert.Equal(t, name, rows[0]["name"])
	assert.Equal(t, "a:b ?", rows[0]["tags"])

	other := h.InsertData(ctx, "users", Fields{F("name", "second")})
	require.NotZero(t, other)
	assert.Equal(t, int64(2), h.GetTableTotal(ctx, "users", ""))

	assert.True(t, h.UpdateData(ctx, "users", Fields{F("id", []int64{id, other}), F("tags", "x")}, nil, []string{"id"}))

	res := h.CustomQuery(ctx, "SELECT count(*)::int AS n FROM users WHERE tags = :tags AND id IN :ids", Params{
		"tags": "x",
		"ids":  []int64{id, other},
	})
	require.True(t, res.OK)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 2, res.Rows[0]["n"])

	res = h.CustomQuery(ctx, "SELECT current_setting('application_name') AS app", nil)
	require.True(t, res.OK)
	assert.Equal(t, "dbhandler-test", res.Rows[0]["app"])

	require.NoError(t, h.BeginTransaction(ctx))
	assert.True(t, h.DeleteData(ctx, "users", Fields{F("id", id)}, []string{"id"}))
	require.NoError(t, h.RollbackTransaction())
	assert.Equal(t, int64(2), h.GetTableTotal(ctx, "users", ""))
}
