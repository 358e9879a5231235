package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var botToken string

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Manage and run chat bots",
}

// telegramBotCmd represents the telegram subcommand of bot
var telegramBotCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Register a global Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if botToken == "" {
			fmt.Println("---")
			fmt.Println("Create your Telegram Bot & Get Token")
			fmt.Println("Open Telegram and search for the official @BotFather.")
			fmt.Println("Send the /newbot command and follow the prompts to name your bot and choose a unique username.")
			fmt.Println("BotFather will provide you with an HTTP API token. Store this token securely, as it is required for all API interactions.")
			fmt.Println("For testing in a group, add the bot to a group and ensure its privacy settings allow it to read all messages (this can be configured in BotFather's settings).")
			fmt.Println("---")
			fmt.Print("token: ")

			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				botToken = strings.TrimSpace(scanner.Text())
			}
		}
		if botToken == "" {
			return errors.New("no token given")
		}

		viper.Set("telegram_token", botToken)
		err := viper.WriteConfig()
		if err != nil {
			err = viper.SafeWriteConfig()
			if err != nil {
				home, _ := os.UserHomeDir()
				err = viper.WriteConfigAs(filepath.Join(home, ".dicer.yaml"))
			}
		}
		if err != nil {
			return fmt.Errorf("error saving configuration: %w", err)
		}
		fmt.Println("Telegram bot token saved successfully.")
		return nil
	},
}

// runBotCmd serves a table on Telegram without a local prompt.
var runBotCmd = &cobra.Command{
	Use:   "run <table>",
	Short: "Serve a table on its Telegram chat",
	Long: `Long-polls Telegram for the chat configured with 'table telegram' and
answers /roll, /r, /check, /set, /stats, /dice, /weights, /history and
/help. A slash followed by an expression rolls it, e.g. /2d6+.`,
	Args: cobra.ExactArgs(1),
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

		bot, err := newTableBot(args[0], app, log)
		if err != nil {
			return fmt.Errorf("%w: run 'bot telegram' and 'table telegram %s' first", err, args[0])
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Serving table '%s' on Telegram. Press Ctrl+C to stop.\n", args[0])
		if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.AddCommand(telegramBotCmd)
	botCmd.AddCommand(runBotCmd)

	telegramBotCmd.Flags().StringVarP(&botToken, "token", "t", "", "Telegram bot API token")
}
