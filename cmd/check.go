package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check <table> <formula>",
	Short: "Evaluate a formula against a player",
	Long: `Evaluates a CEL formula for a player of a table. The formula sees the
player name as 'player', the player stats as 'stats' and can roll with
roll('<expression>'). Every roll is recorded at the table.

	dicer check mytable -p alice "roll('1d20') + stats.dex >= 15.0"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		app, err := openSession(args[0], log)
		if err != nil {
			return err
		}
		defer app.Close()

		formula := strings.Join(args[1:], " ")
		out, err := app.Check(viper.GetString("player"), formula)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
