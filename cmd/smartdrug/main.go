// Command smartdrug runs two randomization tests on the smart drug data of
// J. K. Kruschke, "Bayesian estimation supersedes the t test", J. Exp.
// Psychol. Gen. 142(2), 2013: one on the difference of arithmetic means and
// one on the difference of 20% trimmed means, which is less sensitive to the
// outliers in both groups.
package main

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gorandtest/adapters/datafile"
	"gorandtest/adapters/rng"
	"gorandtest/adapters/stats/mct"
	"gorandtest/app"
	"gorandtest/domain/randtest"
	"gorandtest/internal"
	"gorandtest/internal/config"
	"gorandtest/internal/errors"
)

//go:embed data/*.dat
var dataFiles embed.FS

func loadGroups() (treatment, placebo []float64, err error) {
	read := func(name string) ([]float64, error) {
		raw, err := dataFiles.ReadFile("data/" + name)
		if err != nil {
			return nil, err
		}
		return datafile.ParseText(bytes.NewReader(raw))
	}
	if treatment, err = read("treatment.dat"); err != nil {
		return nil, nil, err
	}
	if placebo, err = read("placebo.dat"); err != nil {
		return nil, nil, err
	}
	return treatment, placebo, nil
}

func run(ctx context.Context, w io.Writer, permutations, workers int, seed int64) error {
	treatment, placebo, err := loadGroups()
	if err != nil {
		return err
	}

	service := app.NewRandTestService(nil, rng.NewPCGAdapter(), nil, internal.DefaultLogger, config.RunConfig{
		Permutations: permutations,
		Alternative:  randtest.TwoSided,
		Workers:      workers,
		TrimPercent:  20,
	})

	for _, measure := range []struct{ title, name string }{
		{"MCT = Arithmetic Mean", mct.NameMean},
		{"MCT = 20% Trimmed Mean", mct.NameTrimmedMean},
	} {
		outcome, err := service.Run(ctx, app.RunRequest{
			GroupA:  treatment,
			GroupB:  placebo,
			Measure: measure.name,
			Seed:    &seed,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n%s\n\n", measure.title, outcome)
	}
	return nil
}

func main() {
	var permutations, workers int
	var seed int64

	cmd := &cobra.Command{
		Use:           "smartdrug",
		Short:         "Randomization tests on the smart drug data",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), permutations, workers, seed)
		},
	}
	cmd.Flags().IntVarP(&permutations, "permutations", "p", 1000, "number of permutations")
	cmd.Flags().IntVarP(&workers, "workers", "n", -1, "number of workers, -1 for every CPU")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
