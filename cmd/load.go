/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/parser"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <table>",
	Short: "Load a table and print its current state",
	Long: `Reads the log.jsonl of a table and folds it into the table state:
rolls and dices per player, their stats and their latest rolls.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tableManager().Load(args[0])
		if err != nil {
			return fmt.Errorf("error finding table: %w", err)
		}
		defer store.Close()

		events, err := store.Load()
		if err != nil {
			return fmt.Errorf("error reading event log: %w", err)
		}

		state, err := engine.NewProjector().Build(events)
		if err != nil {
			return fmt.Errorf("error building state: %w", err)
		}

		fmt.Printf("Successfully loaded table!\n")
		fmt.Printf("Processed %d events.\n", len(events))
		fmt.Print(describeTable(state))
		return nil
	},
}

// describeTable lists the players of a table in name order.
func describeTable(state *engine.TableState) string {
	if len(state.Players) == 0 {
		return "Nobody has rolled yet.\n"
	}
	names := maps.Keys(state.Players)
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		log := state.Players[name]
		fmt.Fprintf(&b, "- %s: %d rolls, %d dices", name, log.Rolls, log.Dices)
		if len(log.Stats) > 0 {
			stats := maps.Keys(log.Stats)
			slices.Sort(stats)
			parts := make([]string, 0, len(stats))
			for _, stat := range stats {
				parts = append(parts, fmt.Sprintf("$%s=%s", stat, parser.FormatValue(log.Stats[stat])))
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
		if n := len(log.Recent); n > 0 {
			fmt.Fprintf(&b, "    last: %s\n", log.Recent[n-1])
		}
	}
	return b.String()
}

func init() {
	tableCmd.AddCommand(loadCmd)
}
