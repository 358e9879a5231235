package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventRolled      EventType = "Rolled"
	EventStatChanged EventType = "StatChanged"
)

// Event is an entry of a table log. Replaying every event through Apply rebuilds the TableState.
type Event interface {
	Type() EventType
	Apply(state *TableState) error
	Message() string
}

// RolledEvent records a resolved expression.
type RolledEvent struct {
	ID         uuid.UUID `json:"id"`
	Player     string    `json:"player"`
	Expression string    `json:"expression"`
	Text       string    `json:"text"`
	HasScalar  bool      `json:"has_scalar"`
	Scalar     float64   `json:"scalar,omitempty"`
	Throws     []Throw   `json:"throws,omitempty"`
	Time       time.Time `json:"time"`
}

// NewRolledEvent stamps a resolution with a fresh id and the current time.
func NewRolledEvent(player, expression string, res *Resolved) *RolledEvent {
	return &RolledEvent{
		ID:         uuid.New(),
		Player:     player,
		Expression: expression,
		Text:       res.Text,
		HasScalar:  res.HasScalar,
		Scalar:     res.Scalar,
		Throws:     res.Throws,
		Time:       time.Now().UTC(),
	}
}

func (e *RolledEvent) Type() EventType { return EventRolled }
func (e *RolledEvent) Apply(state *TableState) error {
	if e.Player == "" {
		return fmt.Errorf("roll %s has no player", e.ID)
	}
	p := state.player(e.Player)
	p.Rolls++
	p.Recent = append(p.Recent, e.Text)
	if len(p.Recent) > RecentLimit {
		p.Recent = p.Recent[len(p.Recent)-RecentLimit:]
	}
	for _, t := range e.Throws {
		p.Dices += len(t.Results)
	}
	return nil
}
func (e *RolledEvent) Message() string { return fmt.Sprintf("%s rolled %s", e.Player, e.Text) }

// StatChangedEvent records a new stat value for a player.
type StatChangedEvent struct {
	Player string    `json:"player"`
	Stat   string    `json:"stat"`
	Value  float64   `json:"value"`
	Time   time.Time `json:"time"`
}

func (e *StatChangedEvent) Type() EventType { return EventStatChanged }
func (e *StatChangedEvent) Apply(state *TableState) error {
	if e.Player == "" || e.Stat == "" {
		return fmt.Errorf("stat change needs a player and a stat")
	}
	state.player(e.Player).Stats[e.Stat] = e.Value
	return nil
}
func (e *StatChangedEvent) Message() string {
	return fmt.Sprintf("%s now has $%s = %v", e.Player, e.Stat, e.Value)
}
