package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selex-sim/selex-sim/sim/assay"
)

// validateCmd checks a spec file without simulating.
var validateCmd = &cobra.Command{
	Use:   "validate <spec.yaml>",
	Short: "Validate an assay spec file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := assay.LoadSpec(args[0])
		if err != nil {
			return err
		}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Printf("%s: ok (%q, %d PCR runs, %d selection rounds)\n",
			args[0], spec.Name, spec.PCRRuns, len(spec.CompetitorUL))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
