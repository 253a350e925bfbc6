//go:build integration

// Package dbtest starts a throwaway Postgres for repository integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sangkips/patient-reminder-service/internal/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// New starts a Postgres container, applies the schema and returns an open
// connection. Both are torn down when the test finishes.
func New(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("reminders_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	conn, err := db.ConnectAndMigrate(connStr)
	require.NoError(t, err, "failed to connect and migrate")
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// Tx begins a transaction that is rolled back when the test finishes, so tests
// sharing one container stay isolated.
func Tx(t *testing.T, conn *sql.DB) *sql.Tx {
	t.Helper()
	tx, err := conn.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}
