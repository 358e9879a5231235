/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/suderio/dicer/internal/session"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const historyFile = ".dicer_history"

var replCmd = &cobra.Command{
	Use:   "repl <table>",
	Short: "Start the interactive dice shell",
	Long: `Starts the read-eval-print loop of a table. When Telegram is configured
for the table, the bot answers the chat in the background.
Usage:
	> 3d6+ + 2
	> by: alice 2d20max + $dex
	> set dex 3
	> help`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]
		useTUI, _ := cmd.Flags().GetBool("tui")

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		app, err := openSession(table, log)
		if err != nil {
			return fmt.Errorf("failed to bootstrap table session: %w", err)
		}
		defer app.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		maybeStartBot(ctx, app, table, log)

		if useTUI {
			return RunTUI(app, table)
		}
		return runLineREPL(app, table, log)
	},
}

func runLineREPL(app *session.Session, table string, log *zap.Logger) error {
	fmt.Printf("Rolling at table '%s' as %s.\nType 'help' for the commands, 'exit' or 'quit' to leave.\n\n", table, app.DefaultPlayer())

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer(app))

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		ln.AppendHistory(line)

		out, err := app.Execute(line)
		if err != nil {
			log.Debug("command failed", zap.String("input", line), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}

// completer completes verbs at the start of a line and named dices after "<n>d".
func completer(app *session.Session) liner.Completer {
	return func(line string) []string {
		return suggestionsFor(app, line)
	}
}

var commandWords = []string{
	session.CommandRoll + " ", session.CommandCheck + " ", session.CommandSet + " ",
	session.CommandDice, session.CommandStats, session.CommandWeights + " ",
	session.CommandHistory, session.CommandHelp, "by: ", "exit", "quit",
}

// suggestionsFor lists the full lines that may complete val.
func suggestionsFor(app *session.Session, val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	lower := strings.ToLower(val)
	for _, c := range commandWords {
		if strings.HasPrefix(c, lower) && len(val) < len(c) {
			out = append(out, c)
		}
	}

	// named dices: "2dFo" -> "2dForce"
	start := strings.LastIndexAny(val, " (+-*/") + 1
	word := val[start:]
	if i := strings.IndexAny(word, "dD"); i > 0 && isDigits(word[:i]) {
		prefix := strings.ToLower(word[i+1:])
		names := maps.Keys(app.Game().NamedDice)
		slices.Sort(names)
		for _, name := range names {
			if strings.HasPrefix(strings.ToLower(name), prefix) && len(prefix) < len(name) {
				out = append(out, val[:start]+word[:i+1]+name)
			}
		}
	}

	// players: "by: al" -> "by: alice "
	if i := strings.LastIndex(lower, "by: "); i >= 0 && !strings.Contains(val[i+4:], " ") {
		prefix := strings.ToLower(val[i+4:])
		players := maps.Keys(app.State().Players)
		slices.Sort(players)
		for _, p := range players {
			if strings.HasPrefix(strings.ToLower(p), prefix) && len(prefix) < len(p) {
				out = append(out, val[:i+4]+p+" ")
			}
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().Bool("tui", false, "Use the full screen interface")
}
