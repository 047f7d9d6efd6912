// Command climbr indexes climbing session logs into document stores and
// creates new session logs from templates.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climbr-etl/internal/adapter/sessionfile"
	"github.com/couchcryptid/climbr-etl/internal/adapter/tz"
	"github.com/couchcryptid/climbr-etl/internal/config"
	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
	"github.com/couchcryptid/climbr-etl/internal/pipeline"
)

func main() {
	if err := newRootCmd(observability.NewMetrics()).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(metrics *observability.Metrics) *cobra.Command {
	root := &cobra.Command{
		Use:           "climbr",
		Short:         "Climbing session indexer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUpdateCmd(metrics))
	root.AddCommand(newValidateCmd(metrics))
	root.AddCommand(newLogCmd())
	return root
}

func newUpdateCmd(metrics *observability.Metrics) *cobra.Command {
	var skipInvalid bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Index every session log into the configured sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loaders, closeLoaders, err := openSinks(cfg, logger)
			if err != nil {
				return err
			}
			defer closeLoaders()

			p := pipeline.New(
				sessionfile.NewReader(cfg.InputDir, logger),
				pipeline.NewTransformer(tz.NewResolver(), newWeatherProvider(cfg, metrics, logger), logger),
				loaders,
				logger,
				metrics,
				pipeline.Options{
					SkipInvalid:  skipInvalid,
					LoadAttempts: cfg.LoadAttempts,
					RetryBackoff: cfg.RetryBackoff,
				},
			)
			summary, runErr := p.Run(ctx)

			if cfg.MetricsTextfile != "" {
				if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
					logger.Error("metrics dump failed", "path", cfg.MetricsTextfile, "error", err)
				}
			}
			if runErr != nil {
				return describe(runErr)
			}

			out := cmd.OutOrStdout()
			for _, f := range summary.Failures {
				_, _ = fmt.Fprintf(out, "skipped %s\n", f.Path)
				printProblems(out, f.Err)
			}
			_, _ = fmt.Fprintf(out, "indexed %d of %d session logs: %d sessions, %d counters, %d projects\n",
				summary.Indexed, summary.Read,
				summary.Documents[domain.IndexSessions],
				summary.Documents[domain.IndexCounters],
				summary.Documents[domain.IndexProjects],
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip session logs that fail validation instead of aborting")
	return cmd
}

func newValidateCmd(metrics *observability.Metrics) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every session log without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)

			p := pipeline.New(
				sessionfile.NewReader(cfg.InputDir, logger),
				pipeline.NewTransformer(tz.NewResolver(), nil, logger),
				nil,
				logger,
				metrics,
				pipeline.Options{},
			)
			summary, err := p.Validate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range summary.Failures {
				_, _ = fmt.Fprintf(out, "%s\n", f.Path)
				printProblems(out, f.Err)
			}
			if n := len(summary.Failures); n > 0 {
				return fmt.Errorf("%d of %d session logs are invalid", n, summary.Read)
			}
			_, _ = fmt.Fprintf(out, "all %d session logs are valid\n", summary.Read)
			return nil
		},
	}
}

// describe expands a run error with the failing field list, which the
// one-line error string flattens.
func describe(err error) error {
	var srcErr *pipeline.SourceError
	if !errors.As(err, &srcErr) {
		return err
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	msg := fmt.Sprintf("invalid session log %s:", srcErr.Path)
	for _, p := range verr.Problems {
		msg += "\n  " + p.String()
	}
	return errors.New(msg + "\nrerun with --skip-invalid to index the remaining logs")
}

func printProblems(w io.Writer, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "  %v\n", err)
}
