package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Update represents a Telegram update
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int    `json:"message_id"`
	From      User   `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Client is a wrapper for the Telegram Bot API. Outgoing messages are throttled.
type Client struct {
	Token      string
	APIBase    string
	HTTPClient *http.Client

	sendLimit *rate.Limiter
}

// NewClient creates a new Telegram client sending at most one message per second per chat.
func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		APIBase:    "https://api.telegram.org",
		HTTPClient: &http.Client{},
		sendLimit:  rate.NewLimiter(rate.Limit(1), 3),
	}
}

// GetUpdates long-polls new updates from Telegram
func (c *Client) GetUpdates(ctx context.Context, offset int, timeout int) ([]Update, error) {
	u := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d", c.APIBase, c.Token, offset, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram API returned status: %s", resp.Status)
	}

	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram API reported error in response")
	}

	return result.Result, nil
}

// SendMessage sends a plain text message to a specific chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.sendLimit != nil {
		if err := c.sendLimit.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", c.APIBase, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status: %v", resp.Status)
	}
	return nil
}
