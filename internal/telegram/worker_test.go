package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	inputs []string
	reply  string
	err    error
}

func (f *fakeExecutor) Execute(input string) (string, error) {
	f.inputs = append(f.inputs, input)
	return f.reply, f.err
}

// fakeAPI serves getUpdates once with updates, then blocks until the request is canceled.
type fakeAPI struct {
	mu      sync.Mutex
	updates []Update
	sent    []map[string]any
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.mu.Lock()
			updates := f.updates
			f.updates = nil
			f.mu.Unlock()
			if updates == nil {
				<-r.Context().Done()
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": updates})
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.mu.Lock()
			f.sent = append(f.sent, body)
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeAPI) messages() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sent...)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/roll 3d6+", "roll by: alice 3d6+"},
		{"/roll@dicer_bot 3d6 max", "roll by: alice 3d6 max"},
		{"/r 1d20", "roll by: alice 1d20"},
		{"/2d6+ + 3", "roll by: alice 2d6+ + 3"},
		{"/history", "history by: alice"},
		{"/weights 6", "weights by: alice 6"},
		{"hello", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.text, "alice"))
		})
	}
}

func TestBotPlayerNames(t *testing.T) {
	b := NewBot(Config{Players: map[int64]string{7: "Paulo"}}, &fakeExecutor{}, nil)
	assert.Equal(t, "Paulo", b.player(User{ID: 7, Username: "ignored"}))
	assert.Equal(t, "bob_the-bard", b.player(User{ID: 8, Username: "bob_the-bard!"}))
	assert.Equal(t, "tg9", b.player(User{ID: 9}))
}

func TestBotRepliesInItsChat(t *testing.T) {
	api := &fakeAPI{updates: []Update{
		{UpdateID: 10, Message: &Message{From: User{ID: 7}, Chat: Chat{ID: 42}, Text: "/roll 3d6+"}},
		{UpdateID: 11, Message: &Message{From: User{ID: 7}, Chat: Chat{ID: 99}, Text: "/roll 1d6"}},
		{UpdateID: 12, Message: &Message{From: User{ID: 7}, Chat: Chat{ID: 42}, Text: "just chatting"}},
	}}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	exec := &fakeExecutor{reply: "Paulo rolled 3d6+ : 3d6{2, 5, 1}+(8) => 8"}
	var seen []int
	bot := NewBot(Config{
		Token:    "token",
		ChatID:   42,
		Players:  map[int64]string{7: "Paulo"},
		OnUpdate: func(id int) { seen = append(seen, id) },
	}, exec, nil)
	bot.Client().APIBase = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- bot.Start(ctx) }()

	require.Eventually(t, func() bool { return len(api.messages()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, []string{"roll by: Paulo 3d6+"}, exec.inputs)
	assert.Equal(t, []int{10, 11, 12}, seen)
	sent := api.messages()[0]
	assert.Equal(t, float64(42), sent["chat_id"])
	assert.Equal(t, exec.reply, sent["text"])
}

func TestBotReportsErrors(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	bot := NewBot(Config{Token: "token", ChatID: 42}, &fakeExecutor{err: errors.New("A dice must have between 2 and 1000 faces")}, nil)
	bot.Client().APIBase = srv.URL

	bot.handleMessage(context.Background(), &Message{From: User{ID: 1, Username: "bob"}, Chat: Chat{ID: 42}, Text: "/roll 1d1"})
	require.Len(t, api.messages(), 1)
	assert.Equal(t, "Error: A dice must have between 2 and 1000 faces", api.messages()[0]["text"])
}

func TestBotThrottlesUsers(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	exec := &fakeExecutor{}
	bot := NewBot(Config{Token: "token", ChatID: 42, Rate: 0.001, Burst: 2}, exec, nil)
	bot.Client().APIBase = srv.URL

	for i := 0; i < 5; i++ {
		bot.handleMessage(context.Background(), &Message{From: User{ID: 1, Username: "bob"}, Chat: Chat{ID: 42}, Text: "/roll 1d6"})
	}
	bot.handleMessage(context.Background(), &Message{From: User{ID: 2, Username: "eve"}, Chat: Chat{ID: 42}, Text: "/roll 1d6"})

	assert.Equal(t, []string{"roll by: bob 1d6", "roll by: bob 1d6", "roll by: eve 1d6"}, exec.inputs)
	assert.Empty(t, api.messages())
}

func TestClientGetUpdatesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad")
	c.APIBase = srv.URL
	_, err := c.GetUpdates(context.Background(), 0, 0)
	assert.ErrorContains(t, err, "401")
}
