/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// tableCmd represents the table command
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage dice tables",
	Long: `A table is a directory under tables_dir holding the named dices of the
game (game.yaml), one sheet per player (players/<name>.yaml) and the
append-only log.jsonl of every roll made at the table.

Use subcommands 'create' and 'load' to scaffold and inspect a table.`,
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
