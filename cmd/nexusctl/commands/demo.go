package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nexus/cmd/nexusctl/internal/demo"
	"github.com/marmos91/nexus/internal/cli/output"
	"github.com/marmos91/nexus/internal/cli/prompt"
	"github.com/marmos91/nexus/pkg/manager"
)

var demoYes bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a small value-graph scenario",
}

var demoJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join two independently created values and show them converge",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !demoYes {
			ok, err := prompt.Confirm("Run the join demo", true)
			if err != nil {
				if prompt.IsAborted(err) {
					return nil
				}
				return err
			}
			if !ok {
				return nil
			}
		}

		mgr := manager.New()
		scenario, err := demo.BuildJoin(mgr)
		if err != nil {
			return fmt.Errorf("failed to build join scenario: %w", err)
		}

		fmt.Println("Before join write: celsius =", scenario.Celsius.Get(), "kelvin =", scenario.Kelvin.Get())
		if err := scenario.Celsius.Set(30); err != nil {
			return fmt.Errorf("failed to write celsius: %w", err)
		}
		fmt.Println("After writing celsius=30: celsius =", scenario.Celsius.Get(), "kelvin =", scenario.Kelvin.Get())

		return output.PrintTable(cmd.OutOrStdout(), snapshotsToTable(scenario.Registry.Snapshots()))
	},
}

var demoSelectionCmd = &cobra.Command{
	Use:   "selection",
	Short: "Show a selection rejected outside its option set and accepted inside it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !demoYes {
			ok, err := prompt.Confirm("Run the selection demo", true)
			if err != nil {
				if prompt.IsAborted(err) {
					return nil
				}
				return err
			}
			if !ok {
				return nil
			}
		}

		mgr := manager.New()
		scenario, err := demo.BuildSelection(mgr)
		if err != nil {
			return fmt.Errorf("failed to build selection scenario: %w", err)
		}

		fmt.Println("Initial selection:", scenario.Region.Selected(), "count:", scenario.Region.Count())
		if err := scenario.Region.Select("ap-south"); err != nil {
			fmt.Println("Rejected ap-south (not in option set):", err)
		}
		if err := scenario.Region.Select("eu-central"); err != nil {
			return fmt.Errorf("failed to select eu-central: %w", err)
		}
		fmt.Println("Selected eu-central:", scenario.Region.Selected())

		return output.PrintTable(cmd.OutOrStdout(), snapshotsToTable(scenario.Registry.Snapshots()))
	},
}

func init() {
	demoCmd.PersistentFlags().BoolVarP(&demoYes, "yes", "y", false, "skip the confirmation prompt")
	demoCmd.AddCommand(demoJoinCmd)
	demoCmd.AddCommand(demoSelectionCmd)
}
