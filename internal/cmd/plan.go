package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/3leaps/treedump/internal/config"
	"github.com/3leaps/treedump/internal/exitcode"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate config and flags and print the planned layout without writing any fragments",
	RunE:  runPlan,
}

var (
	planNFragmentFirstRow uint
	planDepth             uint
	planDepthSet          bool
	planTopology          string
)

func init() {
	rootCmd.AddCommand(planCmd)

	flags := planCmd.Flags()
	flags.UintVar(&planNFragmentFirstRow, "n-fragment-first-row", 1000, "number of fragments in the first row (must be >= 2)")
	flags.UintVar(&planDepth, "depth", 0, "split depth for the tree topology (required, >= 1, when --fragmentation=tree)")
	flags.StringVar(&planTopology, "fragmentation", "oneAryTree", "fragmentation topology: oneAryTree|linkedList|tree")

	planCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		planDepthSet = cmd.Flags().Changed("depth")
		return nil
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfgFile, err := config.Load(cfgPath())
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigInvalid, "loading config", err)
	}

	resolved, err := config.Resolve(cfgFile, config.CLIFlags{
		NFragmentFirstRow: planNFragmentFirstRow,
		Depth:             planDepth,
		HasDepth:          planDepthSet,
		Fragmentation:     planTopology,
		OutputPath:        "./generated",
		TreeID:            "http://myTree.org/tree#",
	})
	if err != nil {
		return exitcode.Wrap(exitcode.CLIInvalid, "resolving flags against config", err)
	}

	fmt.Println("=== Fragmentation Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Topology:        %s\n", resolved.Fragmentation)
	fmt.Printf("Date field:      %s\n", resolved.DateField)
	fmt.Printf("Lowest date:     %s\n", time.Unix(resolved.LowestDate, 0).UTC().Format(config.FileDateLayout))
	fmt.Printf("Highest date:    %s\n", time.Unix(resolved.HighestDate, 0).UTC().Format(config.FileDateLayout))
	fmt.Printf("First row size:  %d\n", resolved.NFragmentFirstRow)
	if resolved.Fragmentation == config.Tree {
		fmt.Printf("Depth:           %d\n", resolved.Depth)
	}
	fmt.Printf("Expected members:%d\n", resolved.NMembers)
	fmt.Printf("Cache capacity:  %d members per fragment\n", resolved.CacheCapacity)
	fmt.Printf("Server address:  %s\n", resolved.ServerAddress)
	fmt.Println()
	fmt.Println("Config validated successfully. Run `treedump fragment` to execute.")
	return nil
}
