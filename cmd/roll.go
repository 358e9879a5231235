package cmd

import (
	"fmt"
	"strings"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/parser"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rollCmd = &cobra.Command{
	Use:   "roll <expression>",
	Short: "Roll a dice expression once",
	Long: `Parses and rolls an expression, e.g.

	dicer roll '3d6+ + 2'
	dicer roll '2d20max'
	dicer roll --table mytable -p alice '1d20 + $dex'

Quote the expression: whitespace decides whether a suffix belongs to a throw.
Without --table the roll uses fresh dices and no named dices or stats.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expression := strings.Join(args, " ")
		table, _ := cmd.Flags().GetString("table")

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		if table != "" {
			app, err := openSession(table, log)
			if err != nil {
				return err
			}
			defer app.Close()

			evt, err := app.Roll(viper.GetString("player"), expression)
			if err != nil {
				return parser.MapError(expression, err)
			}
			fmt.Println(evt.Text)
			return nil
		}

		roller, err := newRoller()
		if err != nil {
			return err
		}
		res, err := rollDetached(engine.NewResolver(roller, log), nil, expression)
		if err != nil {
			return parser.MapError(expression, err)
		}
		fmt.Println(res.Text)
		return nil
	},
}

// rollDetached rolls for a throwaway player that is never saved.
func rollDetached(resolver *engine.Resolver, game *data.GameContext, expression string) (*engine.Resolved, error) {
	expr, err := parser.Parse(game, expression, limitOptions()...)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(data.NewPlayerContext(viper.GetString("player")), expr)
}

func limitOptions() []parser.Option {
	return []parser.Option{parser.WithLimits(viper.GetInt("max_how_many"), viper.GetInt("max_faces"))}
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rollCmd.Flags().StringP("table", "t", "", "Roll at a table, recording the roll and the player dices")
}
