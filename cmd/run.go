package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/selex-sim/selex-sim/internal/history"
	"github.com/selex-sim/selex-sim/internal/render"
	sim "github.com/selex-sim/selex-sim/sim"
	"github.com/selex-sim/selex-sim/sim/assay"
	"github.com/selex-sim/selex-sim/sim/journal"
)

var (
	runSpecPath string
	runStrict   bool
	runQuiet    bool
	runNoSave   bool
)

// runCmd simulates the assay and reports every action and violation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the assay and report volume violations",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadSpec(runSpecPath)
		if err != nil {
			return err
		}
		program, err := assay.Build(spec)
		if err != nil {
			return err
		}
		logrus.Infof("starting dry run of %q: %d commands", program.Name, len(program.Commands))

		start := time.Now()
		s := sim.NewSimulator(program, sim.Config{Strict: runStrict})
		runErr := s.Run(cmd.Context())

		r := render.New(noColor)
		if !runQuiet {
			for _, rec := range s.Journal.Records() {
				fmt.Println(r.Record(rec))
			}
		}
		summary := journal.Summarize(s.Journal)
		fmt.Print(r.Summary(summary))
		s.Metrics.Print()
		logrus.Infof("dry run finished in %s wall time", time.Since(start))

		if runErr != nil {
			return runErr
		}
		if !runNoSave {
			if err := saveRun(cmd.Context(), spec, s); err != nil {
				logrus.Warnf("could not save run history: %v", err)
			}
		}
		// Non-zero exit gates CI on protocols with violations.
		if summary.WarningCount > 0 {
			os.Exit(2)
		}
		return nil
	},
}

func saveRun(ctx context.Context, spec *assay.Spec, s *sim.Simulator) error {
	store, err := history.Open(historyPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	specYAML, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	metricsJSON, err := json.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	journalJSON, err := json.Marshal(s.Journal.Records())
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	id, err := store.Save(ctx, &history.Run{
		Assay:           spec.Name,
		SpecYAML:        string(specYAML),
		Metrics:         metricsJSON,
		Journal:         journalJSON,
		Warnings:        s.Metrics.Warnings,
		VirtualDuration: s.Metrics.VirtualDuration,
	})
	if err != nil {
		return err
	}
	fmt.Printf("saved run %s\n", id)
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runSpecPath, "spec", "", "Assay spec file (YAML); built-in bench defaults when omitted")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Halt on the first volume violation instead of warning")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress per-action journal lines")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Do not persist the run to history")
	rootCmd.AddCommand(runCmd)
}
