package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/product-catalog-api/internal/tools/common"
)

type options struct {
	cfg Config
	ci  bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Drive synthetic traffic against the catalog API"}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfg.BaseURL, "base-url", "http://localhost:3001", "catalog API base URL")
	flags.StringVar(&opts.cfg.Profile, "profile", "mixed", "traffic profile: browse|mixed|error-heavy")
	flags.DurationVar(&opts.cfg.Duration, "duration", 15*time.Second, "how long to send traffic")
	flags.IntVar(&opts.cfg.RPS, "rps", 20, "target requests per second")
	flags.IntVar(&opts.cfg.Concurrency, "concurrency", 6, "concurrent workers")
	flags.Int64Var(&opts.cfg.Seed, "seed", 42, "random seed for request selection")
	flags.BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Send traffic for the configured duration and report status classes",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOptions(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Execute(common.Invocation{
				Tool:     "loadgen",
				Command:  "run",
				CI:       opts.ci,
				Timeout:  opts.cfg.Duration + 15*time.Second,
				ExitCode: 4,
			}, func(ctx context.Context) ([]string, error) {
				res, err := Run(ctx, opts.cfg)
				if err != nil {
					return nil, err
				}
				return res.Details(opts.cfg), nil
			})
		},
	}
}

func validateOptions(opts *options) error {
	switch {
	case opts.cfg.Duration <= 0:
		return fmt.Errorf("--duration must be > 0")
	case opts.cfg.RPS <= 0:
		return fmt.Errorf("--rps must be > 0")
	case opts.cfg.Concurrency <= 0:
		return fmt.Errorf("--concurrency must be > 0")
	case requestsForProfile(opts.cfg.Profile) == nil:
		return fmt.Errorf("unknown profile: %s", opts.cfg.Profile)
	}
	return nil
}

// Details renders the result as key=value lines for the tool output.
func (r Result) Details(cfg Config) []string {
	return []string{
		fmt.Sprintf("profile=%s", cfg.Profile),
		fmt.Sprintf("total_requests=%d", r.TotalRequests),
		fmt.Sprintf("failures=%d", r.Failures),
		fmt.Sprintf("status_2xx=%d", r.Status2xx),
		fmt.Sprintf("status_4xx=%d", r.Status4xx),
		fmt.Sprintf("status_5xx=%d", r.Status5xx),
	}
}
