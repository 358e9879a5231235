package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Executor defines the interface for running table commands.
type Executor interface {
	Execute(input string) (string, error)
}

// Config describes a bot bound to one chat.
type Config struct {
	Token  string
	ChatID int64
	// Players maps Telegram user ids to player names. Unmapped users roll under their username.
	Players map[int64]string
	// Rate and Burst bound the commands a single user may run.
	Rate         float64
	Burst        int
	LastUpdateID int
	// OnUpdate is called with every new update id so that it can be persisted.
	OnUpdate func(updateID int)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

var aliases = map[string]string{
	"r": "roll",
}

var commands = map[string]bool{
	"roll": true, "check": true, "set": true, "dice": true,
	"stats": true, "weights": true, "history": true, "help": true,
}

// Bot handles the integration between Telegram and a dicer session
type Bot struct {
	client       *Client
	executor     Executor
	cfg          Config
	limits       *userLimiter
	lastUpdateID int
	log          *zap.Logger
}

// NewBot initializes a new follower bot
func NewBot(cfg Config, exec Executor, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Bot{
		client:       NewClient(cfg.Token),
		executor:     exec,
		cfg:          cfg,
		limits:       newUserLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		lastUpdateID: cfg.LastUpdateID,
		log:          log,
	}
}

// Client exposes the API client, mainly to point it at another API base.
func (b *Bot) Client() *Client {
	return b.client
}

// Start launches the long-polling loop. It returns when ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("telegram bot started", zap.Int64("chat", b.cfg.ChatID))
	for {
		updates, err := b.client.GetUpdates(ctx, b.lastUpdateID+1, 25)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("failed to fetch updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID > b.lastUpdateID {
				b.lastUpdateID = update.UpdateID
				if b.cfg.OnUpdate != nil {
					b.cfg.OnUpdate(b.lastUpdateID)
				}
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// player names the sender at the table.
func (b *Bot) player(u User) string {
	if name, ok := b.cfg.Players[u.ID]; ok {
		return name
	}
	if name := unsafeName.ReplaceAllString(u.Username, ""); name != "" {
		return name
	}
	return fmt.Sprintf("tg%d", u.ID)
}

// translate turns "/roll@dicer_bot 3d6+" into "roll by: <player> 3d6+". A slash followed
// by anything else is rolled as is ("/2d6+" rolls "2d6+"). Non-commands return "".
func translate(text, player string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	raw := strings.TrimPrefix(text, "/")
	verb, rest, _ := strings.Cut(raw, " ")
	verb, _, _ = strings.Cut(verb, "@")
	verb = strings.ToLower(verb)
	if alias, ok := aliases[verb]; ok {
		verb = alias
	}
	if verb == "" {
		return ""
	}
	if !commands[verb] {
		return "roll by: " + player + " " + strings.TrimSpace(raw)
	}
	return strings.TrimSpace(verb + " by: " + player + " " + strings.TrimSpace(rest))
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat.ID != b.cfg.ChatID {
		return
	}

	player := b.player(msg.From)
	cmd := translate(msg.Text, player)
	if cmd == "" {
		return
	}
	if !b.limits.Allow(msg.From.ID) {
		b.log.Debug("throttled", zap.Int64("user", msg.From.ID), zap.String("player", player))
		return
	}

	reply, err := b.executor.Execute(cmd)
	if err != nil {
		reply = fmt.Sprintf("Error: %v", err)
	}
	if reply == "" {
		return
	}
	if err := b.client.SendMessage(ctx, b.cfg.ChatID, reply); err != nil {
		b.log.Warn("failed to send reply", zap.Error(err))
	}
}
