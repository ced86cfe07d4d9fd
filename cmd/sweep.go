package cmd

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"

	sim "github.com/selex-sim/selex-sim/sim"
	"github.com/selex-sim/selex-sim/sim/assay"
)

type sweepResult struct {
	path     string
	assay    string
	commands int
	warnings int
	duration string
}

// sweepCmd simulates several spec files concurrently and prints a
// violation table, for comparing parameter variants side by side.
var sweepCmd = &cobra.Command{
	Use:   "sweep <spec.yaml>...",
	Short: "Simulate several spec files and compare violations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := make([]sweepResult, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.NumCPU())
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				spec, err := assay.LoadSpec(path)
				if err != nil {
					return err
				}
				program, err := assay.Build(spec)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				s := sim.NewSimulator(program, sim.Config{})
				if err := s.Run(ctx); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[i] = sweepResult{
					path:     path,
					assay:    spec.Name,
					commands: s.Metrics.CommandsExecuted,
					warnings: s.Metrics.Warnings,
					duration: s.Metrics.VirtualDuration.String(),
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("%-32s  %-32s  %8s  %8s  %s\n", "SPEC", "ASSAY", "COMMANDS", "WARNINGS", "DURATION")
		anyWarnings := false
		for _, r := range results {
			fmt.Printf("%-32s  %-32s  %8d  %8d  %s\n", r.path, r.assay, r.commands, r.warnings, r.duration)
			if r.warnings > 0 {
				anyWarnings = true
			}
		}
		if anyWarnings {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
