package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/marmos91/nexus/cmd/nexusctl/internal/demo"
	"github.com/marmos91/nexus/internal/cli/output"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/registry"
)

var inspectScenario string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a read-only tree dump of a demo scenario's registered owners",
	Long: `inspect builds the same scenario "nexusctl demo" runs and prints
every registered owner's current values as a table, the terminal
counterpart to pkg/httpapi's JSON /owners endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := manager.New()

		var reg *registry.Registry
		switch inspectScenario {
		case "join":
			scenario, err := demo.BuildJoin(mgr)
			if err != nil {
				return fmt.Errorf("failed to build join scenario: %w", err)
			}
			reg = scenario.Registry
		case "selection":
			scenario, err := demo.BuildSelection(mgr)
			if err != nil {
				return fmt.Errorf("failed to build selection scenario: %w", err)
			}
			reg = scenario.Registry
		default:
			return fmt.Errorf("unknown scenario %q (expected \"join\" or \"selection\")", inspectScenario)
		}

		return output.PrintTable(cmd.OutOrStdout(), snapshotsToTable(reg.Snapshots()))
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectScenario, "scenario", "join", `which demo scenario to inspect ("join" or "selection")`)
}

// snapshotsToTable flattens a sorted set of owner snapshots into rows of
// (owner, key, value), so a registry with arbitrarily many hooks per owner
// still renders as one table.
func snapshotsToTable(snaps []registry.Snapshot) *output.TableData {
	table := output.NewTableData("OWNER", "KEY", "VALUE")
	for _, snap := range snaps {
		keys := make([]string, 0, len(snap.Values))
		for k := range snap.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.AddRow(snap.Name, k, fmt.Sprintf("%v", snap.Values[k]))
		}
	}
	return table
}
