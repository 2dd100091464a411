package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// Environment variables consulted for the test database, in order.
const (
	EnvTestDBURL   = "TASKHUB_TEST_DB_URL"
	EnvDatabaseURL = "DATABASE_URL"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 10 * time.Second

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

var (
	migrateOnce sync.Once
	migrateErr  error
)

// IsCI reports whether the tests run under a CI provider.
func IsCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// GetTestDatabaseURL returns the first configured test database URL, or "".
func GetTestDatabaseURL() string {
	for _, v := range []string{EnvTestDBURL, EnvDatabaseURL} {
		if url := strings.TrimSpace(os.Getenv(v)); url != "" {
			return url
		}
	}
	return ""
}

// GetTestDB opens the test database and migrates it to the latest schema.
// Without a configured URL the test is skipped, or failed under CI where a
// missing database is a setup error.
func GetTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		if IsCI() {
			t.Fatalf("%s or %s must be set for integration tests in CI", EnvTestDBURL, EnvDatabaseURL)
		}
		t.Skipf("integration test skipped: set %s or %s", EnvTestDBURL, EnvDatabaseURL)
	}

	db, err := sqlx.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to reach test database")

	migrateOnce.Do(func() {
		migrateErr = ApplyMigrations(ctx, db.DB)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")
	return db
}

// ApplyMigrations brings db up to the latest embedded migration.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
