package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/suderio/dicer/internal/session"
	"github.com/suderio/dicer/internal/telegram"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// TelegramFile holds the chat binding of a table.
const TelegramFile = "telegram.yaml"

var errNoTelegram = errors.New("telegram is not configured")

// TelegramTableConfig is the YAML shape of telegram.yaml.
type TelegramTableConfig struct {
	ChatID       string            `yaml:"chat_id"`
	Users        map[string]string `yaml:"users"` // user_id -> player
	LastUpdateID int               `yaml:"last_update_id,omitempty"`
}

func telegramConfigPath(table string) string {
	return filepath.Join(tableManager().TablePath(table), TelegramFile)
}

func loadTelegramConfig(path string) (*TelegramTableConfig, error) {
	config := &TelegramTableConfig{Users: make(map[string]string)}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if config.Users == nil {
		config.Users = make(map[string]string)
	}
	return config, nil
}

func saveTelegramConfig(path string, config *TelegramTableConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// newTableBot builds the bot of a table from the global token and the table telegram.yaml.
// It returns errNoTelegram when either is missing.
func newTableBot(table string, exec telegram.Executor, log *zap.Logger) (*telegram.Bot, error) {
	token := viper.GetString("telegram_token")
	if token == "" {
		return nil, errNoTelegram
	}

	path := telegramConfigPath(table)
	config, err := loadTelegramConfig(path)
	if err != nil {
		return nil, err
	}
	if config.ChatID == "" {
		return nil, errNoTelegram
	}

	chatID, err := strconv.ParseInt(config.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("chat_id %q is not a number", config.ChatID)
	}

	players := make(map[int64]string)
	for idStr, player := range config.Users {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err == nil {
			players[id] = player
		}
	}

	return telegram.NewBot(telegram.Config{
		Token:        token,
		ChatID:       chatID,
		Players:      players,
		Rate:         viper.GetFloat64("telegram_rate"),
		Burst:        viper.GetInt("telegram_burst"),
		LastUpdateID: config.LastUpdateID,
		OnUpdate: func(updateID int) {
			config.LastUpdateID = updateID
			if err := saveTelegramConfig(path, config); err != nil {
				log.Warn("failed to save telegram offset", zap.Error(err))
			}
		},
	}, exec, log), nil
}

// maybeStartBot starts the bot of a table in the background when Telegram is configured.
func maybeStartBot(ctx context.Context, s *session.Session, table string, log *zap.Logger) {
	bot, err := newTableBot(table, s, log)
	if err != nil {
		if !errors.Is(err, errNoTelegram) {
			log.Warn("telegram bot disabled", zap.Error(err))
		}
		return
	}

	go func() {
		if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("telegram bot stopped", zap.Error(err))
		}
	}()
	log.Info("telegram bot active", zap.String("table", table))
}
