package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/persistence/migrations"
)

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", extractUp(content))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}

func TestLoadMigrations_BothDialects(t *testing.T) {
	pg, err := loadMigrations(migrations.Postgres, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Contains(t, pg[0].up, "registrations_email_key")
	assert.NotContains(t, pg[0].up, "DROP TABLE")

	lite, err := loadMigrations(migrations.SQLite, "sqlite")
	require.NoError(t, err)
	require.Len(t, lite, len(pg), "dialects must stay in step")
}

func TestRunSQLiteMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	lite, err := NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "m.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lite.Close)

	require.NoError(t, RunSQLiteMigrations(ctx, lite.DB, migrations.SQLite, zap.NewNop()))
	require.NoError(t, RunSQLiteMigrations(ctx, lite.DB, migrations.SQLite, zap.NewNop()))

	var applied int
	require.NoError(t, lite.DB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverSQLite},
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")},
	}
	store, err := OpenStore(context.Background(), cfg, true, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, store.Driver)
}
