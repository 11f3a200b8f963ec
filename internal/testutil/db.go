// Package testutil provides shared test fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/persistence"
	"github.com/spec-kit/registration-service/internal/persistence/migrations"
	"github.com/spec-kit/registration-service/internal/repository"
)

// NewRegistrationRepository opens a migrated SQLite store in a temp directory.
// The database is closed when the test completes.
func NewRegistrationRepository(t testing.TB) repository.RegistrationRepository {
	t.Helper()
	ctx := context.Background()
	lite, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err, "open sqlite")
	t.Cleanup(lite.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, lite.DB, migrations.SQLite, zap.NewNop()), "migrate sqlite")
	return repository.NewSQLiteRegistrationRepository(lite.DB)
}
