package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"gorandtest/adapters/datafile"
	"gorandtest/adapters/postgres"
	"gorandtest/adapters/rng"
	"gorandtest/adapters/stats/mct"
	"gorandtest/app"
	"gorandtest/internal"
	"gorandtest/internal/config"
	"gorandtest/internal/errors"
	"gorandtest/internal/report"
	"gorandtest/ports"
)

// runFlags are shared by the test subcommands
type runFlags struct {
	alternative  string
	permutations int
	workers      int
	logLevel     string
	seed         int64
	systematic   bool
	format       string
	store        bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "randtest",
		Short: "Two-sample randomization tests on the command line",
		Long: `Randomization tests for the comparison of a measure of central tendency
computed from two independent samples gathered in a controlled experiment.

Each sample is read from a file: plain text with numbers separated by
whitespace or newlines, .csv, or the first numeric column of an .xlsx sheet.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.alternative, "alternative", "a", string(cfg.Run.Alternative), "alternative hypothesis: two_sided, greater or less")
	pf.IntVarP(&flags.permutations, "permutations", "p", cfg.Run.Permutations, "number of permutations, -1 for systematic enumeration")
	pf.IntVarP(&flags.workers, "workers", "n", cfg.Run.Workers, "number of workers, non-positive values count back from the CPU count")
	pf.StringVarP(&flags.logLevel, "log-level", "l", cfg.LogLevel.String(), "log level: debug, info, warn, error or critical")
	pf.Int64VarP(&flags.seed, "seed", "s", 0, "seed for the random number generator (default: drawn and reported)")
	pf.BoolVar(&flags.systematic, "systematic", false, "enumerate every partition instead of sampling")
	pf.StringVar(&flags.format, "format", string(report.FormatText), "output format: text, markdown, json or html")
	pf.BoolVar(&flags.store, "store", false, "store the outcome in DATABASE_URL")

	rootCmd.AddCommand(
		newMeanCmd(cfg, flags),
		newTrimmedMeanCmd(cfg, flags),
		newRunsCmd(cfg, flags),
	)
	return rootCmd
}

func newMeanCmd(cfg *config.Config, flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mean FILE_A FILE_B",
		Short: "Test the difference of arithmetic means",
		Long: `Randomization test for the comparison of arithmetic means.

Example: randtest mean drug.dat placebo.dat -a greater -p 20000 -n 4 -s 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, cfg, flags, app.RunRequest{Measure: mct.NameMean}, args[0], args[1])
		},
	}
}

func newTrimmedMeanCmd(cfg *config.Config, flags *runFlags) *cobra.Command {
	var trimPercent int

	cmd := &cobra.Command{
		Use:   "tmean FILE_A FILE_B",
		Short: "Test the difference of trimmed means",
		Long: `Randomization test for the comparison of trimmed means. The trim
percentage is cut from each end of every sorted group.

Example: randtest tmean drug.dat placebo.dat -t 10 --systematic`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if trimPercent < 0 || trimPercent > 49 {
				return errors.WithCode(errors.CodeInvalidConfiguration,
					fmt.Errorf("trim percent must be within 0-49, got %d", trimPercent))
			}
			req := app.RunRequest{Measure: mct.NameTrimmedMean, TrimPercent: &trimPercent}
			return runTest(cmd, cfg, flags, req, args[0], args[1])
		},
	}

	cmd.Flags().IntVarP(&trimPercent, "trim", "t", cfg.Run.TrimPercent, "percent trimmed from each end, 0-49")
	return cmd
}

func newRunsCmd(cfg *config.Config, flags *runFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List outcomes stored in DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.ConfigInvalid("DATABASE_URL is required to list runs")
			}
			repo, closeDB, err := openRepository(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer closeDB()

			outcomes, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return report.WriteAll(cmd.OutOrStdout(), outcomes, format)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func runTest(cmd *cobra.Command, cfg *config.Config, flags *runFlags, req app.RunRequest, fileA, fileB string) error {
	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	level, err := internal.ParseLevel(flags.logLevel)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidConfiguration, err)
	}
	logger := internal.NewLogger(level)

	groupA, err := datafile.ReadSample(fileA)
	if err != nil {
		return err
	}
	groupB, err := datafile.ReadSample(fileB)
	if err != nil {
		return err
	}

	req.GroupA = groupA
	req.GroupB = groupB
	req.Alternative = flags.alternative
	req.Permutations = &flags.permutations
	req.Workers = &flags.workers
	req.Systematic = flags.systematic
	if cmd.Flags().Changed("seed") {
		req.Seed = &flags.seed
	}

	var repo ports.OutcomeRepository
	if flags.store {
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("--store needs DATABASE_URL")
		}
		r, closeDB, err := openRepository(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer closeDB()
		repo = r
	}

	// The command line has no permutation cap.
	defaults := cfg.Run
	defaults.MaxPermutations = 0
	service := app.NewRandTestService(repo, rng.NewPCGAdapter(), nil, logger, defaults)

	outcome, err := service.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), outcome, format)
}

func openRepository(ctx context.Context, url string) (ports.OutcomeRepository, func(), error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, nil, errors.DatabaseError("failed to connect to database", err)
	}
	return postgres.NewOutcomeRepository(db), func() { db.Close() }, nil
}
