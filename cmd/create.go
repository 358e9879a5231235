/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Create a new table",
	Long: `Bootstraps a table directory under tables_dir with a sample game.yaml,
an empty players/ directory and a fresh log.jsonl. The game.yaml of an
existing table is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := tableManager()
		store, err := manager.Create(args[0])
		if err != nil {
			return fmt.Errorf("error creating table: %w", err)
		}
		defer store.Close()

		fmt.Printf("Successfully created table!\n")
		fmt.Printf("Log file stored at: %s\n", manager.LogPath(args[0]))
		return nil
	},
}

func init() {
	tableCmd.AddCommand(createCmd)
}
