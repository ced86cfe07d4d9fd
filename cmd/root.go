package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/selex-sim/selex-sim/internal/platform"
	"github.com/selex-sim/selex-sim/sim/assay"
)

var (
	logLevel    string // log verbosity for diagnostics (journal output is separate)
	historyPath string // SQLite run archive location
	noColor     bool   // disable styled output
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "selex-sim",
	Short: "Dry-run simulator for an OT-2 directed-evolution protocol",
	Long: `selex-sim executes the epPCR + SELEX bench protocol against a virtual
deck: it tracks every well's volume, validates aspirations and dispenses,
accounts for tips and module state, and estimates the protocol's wall time.
Volume violations are surfaced as warnings instead of corrupting state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSpec loads an assay spec file, or the built-in bench defaults
// when no path is given.
func loadSpec(path string) (*assay.Spec, error) {
	if path == "" {
		return assay.DefaultSpec(), nil
	}
	return assay.LoadSpec(path)
}

// init sets up persistent flags shared by every subcommand. Environment
// variables provide the defaults; flags override them.
func init() {
	envCfg, err := platform.ParseEnv()
	if err != nil {
		logrus.Fatalf("invalid environment configuration: %v", err)
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", envCfg.LogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", envCfg.HistoryPath, "Path of the SQLite run history")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", envCfg.NoColor, "Disable colored output")
}
