package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selex-sim/selex-sim/sim/assay"
)

var stepsSpecPath string

// stepsCmd prints the numbered command listing without executing it,
// for protocol review before a bench session.
var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Print the assay's command listing without simulating",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadSpec(stepsSpecPath)
		if err != nil {
			return err
		}
		program, err := assay.Build(spec)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d commands\n", program.Name, len(program.Commands))
		for i, c := range program.Commands {
			fmt.Printf("%5d  %s\n", i+1, c)
		}
		return nil
	},
}

func init() {
	stepsCmd.Flags().StringVar(&stepsSpecPath, "spec", "", "Assay spec file (YAML); built-in bench defaults when omitted")
	rootCmd.AddCommand(stepsCmd)
}
