package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/selex-sim/selex-sim/internal/render"
	sim "github.com/selex-sim/selex-sim/sim"
	"github.com/selex-sim/selex-sim/sim/assay"
	"github.com/selex-sim/selex-sim/sim/journal"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 500 * time.Millisecond

// watchCmd re-simulates a spec file whenever it changes, printing the
// summary each time. Useful while editing protocol parameters.
var watchCmd = &cobra.Command{
	Use:   "watch <spec.yaml>",
	Short: "Re-simulate the spec whenever the file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()
		// Watch the directory, not the file: editors replace files on
		// save and a file watch dies with the old inode.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
		}

		simulateOnce(ctx, path)
		fmt.Printf("watching %s (ctrl-c to stop)\n", path)

		debounce := time.NewTimer(watchDebounce)
		if !debounce.Stop() {
			<-debounce.C
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != path || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				debounce.Reset(watchDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logrus.Warnf("watcher: %v", err)
			case <-debounce.C:
				simulateOnce(ctx, path)
			}
		}
	},
}

// simulateOnce runs one quiet simulation of the spec file and prints
// its summary. Errors are reported and watching continues.
func simulateOnce(ctx context.Context, path string) {
	spec, err := assay.LoadSpec(path)
	if err != nil {
		logrus.Errorf("%v", err)
		return
	}
	program, err := assay.Build(spec)
	if err != nil {
		logrus.Errorf("%v", err)
		return
	}
	s := sim.NewSimulator(program, sim.Config{})
	if err := s.Run(ctx); err != nil {
		logrus.Errorf("dry run failed: %v", err)
		return
	}
	r := render.New(noColor)
	summary := journal.Summarize(s.Journal)
	fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), path)
	for _, rec := range s.Journal.Warnings() {
		fmt.Println(r.Record(rec))
	}
	fmt.Print(r.Summary(summary))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
