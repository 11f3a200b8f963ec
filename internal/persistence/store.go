package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/persistence/migrations"
	"github.com/spec-kit/registration-service/internal/repository"
)

// Store is the opened registration store for the configured driver.
type Store struct {
	Driver        string
	Registrations repository.RegistrationRepository
	close         func()
}

// OpenStore connects to the configured driver and, when enabled, applies migrations.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgresStore(ctx, cfg.Postgres, migrate, logger)
	case config.DriverSQLite:
		lite, err := NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		// The SQLite schema is always ensured; there is no external DBA step.
		if err := RunSQLiteMigrations(ctx, lite.DB, migrations.SQLite, logger); err != nil {
			lite.Close()
			return nil, err
		}
		return &Store{
			Driver:        config.DriverSQLite,
			Registrations: repository.NewSQLiteRegistrationRepository(lite.DB),
			close:         lite.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases the underlying connection.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.Registrations.Ping(ctx)
}
