package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/product-catalog-api/internal/config"
	"github.com/sandeepkv93/product-catalog-api/internal/database"
	"github.com/sandeepkv93/product-catalog-api/internal/repository"
	"github.com/sandeepkv93/product-catalog-api/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Catalog seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newCreateUserCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert the sample catalog when the catalog is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "apply", func(ctx context.Context) ([]string, error) {
				db, err := loadDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return Apply(ctx, repository.NewProductRepository(db))
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				db, err := loadDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return DryRun(ctx, repository.NewProductRepository(db))
			})
		},
	}
}

func newCreateUserCommand(opts *options) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Provision a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "create-user", func(ctx context.Context) ([]string, error) {
				if strings.TrimSpace(email) == "" || password == "" {
					return nil, errors.New("--email and --password are required")
				}
				db, err := loadDB(ctx, opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB(db)
				return CreateUser(ctx, repository.NewUserRepository(db), email, password, name)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func Apply(ctx context.Context, products repository.ProductRepository) ([]string, error) {
	report, err := database.SeedSampleProducts(ctx, products)
	if err != nil {
		return nil, err
	}
	if report.Noop {
		return []string{fmt.Sprintf("catalog already has %d products, nothing inserted", report.ExistingProducts)}, nil
	}
	return []string{fmt.Sprintf("inserted %d sample products", report.InsertedProducts)}, nil
}

func DryRun(ctx context.Context, products repository.ProductRepository) ([]string, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return []string{fmt.Sprintf("catalog has %d products, apply would be a no-op", n)}, nil
	}
	samples := database.SampleProducts()
	details := []string{fmt.Sprintf("would insert %d sample products", len(samples))}
	for _, p := range samples {
		details = append(details, fmt.Sprintf("%s (%s, %s)", p.Title, p.Category, p.Price.StringFixed(2)))
	}
	return details, nil
}

func CreateUser(ctx context.Context, users repository.UserRepository, email, password, name string) ([]string, error) {
	user, created, err := database.EnsureUser(ctx, users, email, password, name)
	if err != nil {
		return nil, err
	}
	if !created {
		return []string{fmt.Sprintf("user already exists: %s (id=%d)", user.Email, user.ID)}, nil
	}
	return []string{fmt.Sprintf("created user: %s (id=%d)", user.Email, user.ID)}, nil
}

func execute(opts *options, command string, fn common.Action) error {
	return common.Execute(common.Invocation{
		Tool:     "seed",
		Command:  command,
		CI:       opts.ci,
		Timeout:  opts.timeout,
		ExitCode: 3,
	}, fn)
}

// loadDB opens the configured database and makes sure the schema exists.
func loadDB(ctx context.Context, envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.CatalogBackend == config.BackendMemory {
		return nil, fmt.Errorf("CATALOG_BACKEND=%s is seeded at server startup, not by this tool", cfg.CatalogBackend)
	}
	db, err := database.OpenWithRetry(ctx, cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
