package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	tgChatID    string
	tgUserPairs []string
)

var telegramCmd = &cobra.Command{
	Use:   "telegram <table>",
	Short: "Configure the Telegram chat of a table",
	Long: `Binds a table to a Telegram group chat and maps Telegram user ids to
player names. Users that are not mapped roll under their Telegram username.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]
		manager := tableManager()
		if _, err := os.Stat(manager.TablePath(table)); os.IsNotExist(err) {
			return fmt.Errorf("table directory %s does not exist. Run 'table create' first", manager.TablePath(table))
		}

		configPath := telegramConfigPath(table)
		config, err := loadTelegramConfig(configPath)
		if err != nil {
			return err
		}

		if tgChatID == "" && config.ChatID == "" {
			fmt.Println("---")
			fmt.Println("How to get your Telegram Chat ID:")
			fmt.Println("1. Add your bot to the group.")
			fmt.Println("2. Send a message in the group (e.g., /roll 1d20).")
			fmt.Println("3. Access https://api.telegram.org/bot<TOKEN>/getUpdates in your browser.")
			fmt.Println("4. Look for the 'chat' object and its 'id' field (it usually starts with a minus sign).")
			fmt.Println("---")
			fmt.Print("chat_id: ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				tgChatID = strings.TrimSpace(scanner.Text())
			}
		}

		if tgChatID != "" {
			if _, err := strconv.ParseInt(tgChatID, 10, 64); err != nil {
				return fmt.Errorf("chat_id %q is not a number", tgChatID)
			}
			config.ChatID = tgChatID
		}

		for _, pair := range tgUserPairs {
			player, userID, ok := strings.Cut(pair, ":")
			if !ok || player == "" {
				fmt.Printf("Warning: invalid user pair format '%s'. Expected 'player:user_id'\n", pair)
				continue
			}
			if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
				fmt.Printf("Warning: user id '%s' of %s is not a number\n", userID, player)
				continue
			}
			config.Users[userID] = player
		}

		if err := saveTelegramConfig(configPath, config); err != nil {
			return err
		}
		fmt.Printf("Telegram table configuration saved to %s\n", configPath)
		return nil
	},
}

func init() {
	tableCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().StringVarP(&tgChatID, "chat_id", "c", "", "Telegram group chat ID")
	telegramCmd.Flags().StringSliceVarP(&tgUserPairs, "user", "u", []string{}, "Map a Telegram user_id to a player (format: player:user_id)")
}
