package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/database"
	"github.com/sandeepkv93/product-catalog-api/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Catalog schema migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "up", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return Up(cfg, db)
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which catalog tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "status", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return StatusDetails(db)
			})
		},
	}
}

func newPlanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show migration plan (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "plan", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return PlanDetails(db)
			})
		},
	}
}

func Up(cfg *config.Config, db *gorm.DB) ([]string, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	details, err := StatusDetails(db)
	if err != nil {
		return nil, err
	}
	return append([]string{"schema migration applied", "backend: " + cfg.CatalogBackend}, details...), nil
}

func StatusDetails(db *gorm.DB) ([]string, error) {
	tables, err := database.Status(db)
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(tables))
	for _, t := range tables {
		state := "missing"
		if t.Present {
			state = "present"
		}
		details = append(details, fmt.Sprintf("table %s: %s", t.Table, state))
	}
	return details, nil
}

func PlanDetails(db *gorm.DB) ([]string, error) {
	tables, err := database.Status(db)
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(tables)+1)
	for _, t := range tables {
		if t.Present {
			details = append(details, fmt.Sprintf("would reconcile columns and indexes on %s", t.Table))
			continue
		}
		details = append(details, fmt.Sprintf("would create table %s", t.Table))
	}
	return append(details, "no mutation executed in plan mode"), nil
}

func execute(opts *options, command string, fn common.Action) error {
	return common.Execute(common.Invocation{
		Tool:     "migrate",
		Command:  command,
		CI:       opts.ci,
		Timeout:  opts.timeout,
		ExitCode: 3,
	}, fn)
}

func loadConfigDB(ctx context.Context, envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.CatalogBackend == config.BackendMemory {
		return nil, nil, fmt.Errorf("CATALOG_BACKEND=%s has no schema to migrate", cfg.CatalogBackend)
	}
	db, err := database.OpenWithRetry(ctx, cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
