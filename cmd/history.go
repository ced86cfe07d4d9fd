package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selex-sim/selex-sim/internal/history"
	"github.com/selex-sim/selex-sim/internal/render"
	"github.com/selex-sim/selex-sim/sim/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored dry runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		runs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no stored runs")
			return nil
		}
		fmt.Printf("%-8s  %-20s  %-32s  %8s  %s\n", "ID", "STARTED", "ASSAY", "WARNINGS", "DURATION")
		for _, r := range runs {
			fmt.Printf("%-8s  %-20s  %-32s  %8d  %s\n",
				r.ID[:8], r.StartedAt.Format("2006-01-02 15:04:05"), r.Assay, r.Warnings, r.VirtualDuration)
		}
		return nil
	},
}

var historyShowWarnings bool

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored run's journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("run %s: %q started %s, %d warnings, virtual duration %s\n",
			run.ID, run.Assay, run.StartedAt.Format("2006-01-02 15:04:05"), run.Warnings, run.VirtualDuration)

		var records []journal.Record
		if err := json.Unmarshal(run.Journal, &records); err != nil {
			return fmt.Errorf("decode stored journal: %w", err)
		}
		r := render.New(noColor)
		for _, rec := range records {
			if historyShowWarnings && rec.Severity != journal.SeverityWarning {
				continue
			}
			fmt.Println(r.Record(rec))
		}
		return nil
	},
}

var historyPruneKeep int

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		removed, err := store.Prune(cmd.Context(), historyPruneKeep)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d run(s), kept the newest %d\n", removed, historyPruneKeep)
		return nil
	},
}

func init() {
	historyShowCmd.Flags().BoolVar(&historyShowWarnings, "warnings", false, "Show only warning records")
	historyPruneCmd.Flags().IntVar(&historyPruneKeep, "keep", 20, "Number of newest runs to keep")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}
