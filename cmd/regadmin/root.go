package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/observability"
	"github.com/spec-kit/registration-service/internal/persistence"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "regadmin",
		Short: "Registration service maintenance commands",
		Long: `Maintenance commands for the registration service.

Configuration is read from the environment (and .env) exactly as the API
server reads it, so the same POSTGRES_DSN or SQLITE_PATH selects the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newHashPasswordCmd(),
		newMigrateCmd(),
		newStatsCmd(),
		newExportCmd(),
		newRangeCmd(),
	)
	return root
}

// session holds what a store-backed command needs.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *persistence.Store
}

func (s *session) Close() {
	s.store.Close()
	_ = s.logger.Sync()
}

// openSession loads config and opens the store. Logs go to stderr so command
// output on stdout stays machine readable.
func openSession(ctx context.Context, migrate bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := persistence.OpenStore(ctx, cfg, migrate, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, store: store}, nil
}
