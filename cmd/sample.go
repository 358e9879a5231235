package cmd

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/parser"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const histogramWidth = 40

var sampleCmd = &cobra.Command{
	Use:   "sample <expression>",
	Short: "Roll an expression many times and show the distribution",
	Long: `Rolls an expression repeatedly for one throwaway player and prints a
histogram of the outcomes. The player dices keep their memory between
rolls, so the histogram shows how streaks are damped.

	dicer sample -n 5000 '3d6+'
	dicer sample --table mytable '1dFudge'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expression := strings.Join(args, " ")
		n, _ := cmd.Flags().GetInt("count")
		table, _ := cmd.Flags().GetString("table")
		if n <= 0 {
			return errors.New("count must be positive")
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		var game *data.GameContext
		if table != "" {
			game, err = tableManager().Loader(table).LoadGame()
			if err != nil {
				return err
			}
		}

		expr, err := parser.Parse(game, expression, limitOptions()...)
		if err != nil {
			return parser.MapError(expression, err)
		}

		roller, err := newRoller()
		if err != nil {
			return err
		}
		resolver := engine.NewResolver(roller, log)
		player := data.NewPlayerContext("sample")

		h := newHistogram()
		bar := progressbar.Default(int64(n), "rolling")
		for i := 0; i < n; i++ {
			res, err := resolver.Resolve(player, expr)
			if err != nil {
				return parser.MapError(expression, err)
			}
			h.add(res)
			_ = bar.Add(1)
		}

		fmt.Println()
		fmt.Print(h.String())
		return nil
	},
}

// histogram counts scalar outcomes, or face names for expressions without a scalar.
type histogram struct {
	scalars map[float64]int
	names   map[string]int
	rolls   int
	sum     float64
	// undefined counts scalars that are not finite numbers
	undefined int
}

func newHistogram() *histogram {
	return &histogram{scalars: make(map[float64]int), names: make(map[string]int)}
}

func (h *histogram) add(res *engine.Resolved) {
	if res.HasScalar && (math.IsNaN(res.Scalar) || math.IsInf(res.Scalar, 0)) {
		h.undefined++
		return
	}
	if res.HasScalar {
		h.rolls++
		h.scalars[res.Scalar]++
		h.sum += res.Scalar
		return
	}
	for _, t := range res.Throws {
		for _, name := range t.Names {
			h.names[name]++
		}
	}
}

func (h *histogram) String() string {
	var b strings.Builder
	if len(h.scalars) > 0 {
		keys := maps.Keys(h.scalars)
		slices.Sort(keys)
		labels := make([]string, len(keys))
		for i, k := range keys {
			labels[i] = parser.FormatValue(k)
		}
		h.bars(&b, labels, func(i int) int { return h.scalars[keys[i]] })
		fmt.Fprintf(&b, "mean %s over %d rolls\n", parser.FormatValue(math.Round(h.sum/float64(h.rolls)*100)/100), h.rolls)
	}
	if len(h.names) > 0 {
		keys := maps.Keys(h.names)
		slices.Sort(keys)
		h.bars(&b, keys, func(i int) int { return h.names[keys[i]] })
	}
	if h.undefined > 0 {
		fmt.Fprintf(&b, "%d rolls without a numeric result\n", h.undefined)
	}
	return b.String()
}

func (h *histogram) bars(b *strings.Builder, labels []string, count func(int) int) {
	width, peak := 0, 0
	for i, l := range labels {
		width = max(width, len(l))
		peak = max(peak, count(i))
	}
	if peak == 0 {
		return
	}
	for i, l := range labels {
		c := count(i)
		fmt.Fprintf(b, "%*s | %-*s %d\n", width, l, histogramWidth, strings.Repeat("#", c*histogramWidth/peak), c)
	}
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().IntP("count", "n", 1000, "Number of rolls")
	sampleCmd.Flags().StringP("table", "t", "", "Use the named dices of a table")
}
