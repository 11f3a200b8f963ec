package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/registration-service/internal/api/dto"
	"github.com/spec-kit/registration-service/internal/auth"
	"github.com/spec-kit/registration-service/internal/repository"
	"github.com/spec-kit/registration-service/internal/service"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer sess.Close()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", sess.store.Driver)
			return err
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print registration counters as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer sess.Close()

			svc := service.NewStatsService(service.StatsDependencies{
				Registrations: sess.store.Registrations,
				Location:      sess.cfg.App.Location(),
			})
			snap, err := svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.NewStats(snap))
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		status string
		start  string
		end    string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write registrations as CSV",
		Long: `Write registrations as CSV, newest first.

Examples:
  regadmin export --status approved --out approved.csv
  regadmin export --start 2026-01-01 --end 2026-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer sess.Close()

			svc := service.NewExportService(service.ExportDependencies{
				Registrations: sess.store.Registrations,
				Location:      sess.cfg.App.Location(),
			})
			filter, err := svc.PrepareFilter(service.ExportQuery{Status: status, StartDate: start, EndDate: end})
			if err != nil {
				return err
			}

			var rows int
			if out == "" {
				rows, err = svc.Write(cmd.Context(), cmd.OutOrStdout(), filter)
			} else {
				rows, err = exportToFile(cmd.Context(), svc, filter, out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d registrations\n", rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved, rejected or all")
	cmd.Flags().StringVar(&start, "start", "", "earliest creation date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "latest creation date, inclusive (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// createOutput opens the export destination.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// exportToFile writes the CSV to path. A failed close is reported, since the
// final buffered bytes are only flushed there.
func exportToFile(ctx context.Context, svc *service.ExportService, filter repository.RegistrationFilter, path string) (rows int, err error) {
	f, err := createOutput(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return svc.Write(ctx, f, filter)
}

func newRangeCmd() *cobra.Command {
	var (
		start string
		end   string
	)
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print registrations created in a date range as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer sess.Close()

			loc := sess.cfg.App.Location()
			from, err := parseDay(start, loc, false)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			to, err := parseDay(end, loc, true)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			review := service.NewReviewService(service.ReviewDependencies{Registrations: sess.store.Registrations})
			items, err := review.ByDateRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.NewRegistrations(items))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day, inclusive (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func parseDay(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Millisecond), nil
	}
	return day, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
