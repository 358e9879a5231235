package data

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidNamedDice is returned when a named dice is missing its name, description or faces.
var ErrInvalidNamedDice = errors.New("invalid named dice")

// NamedDice is a dice whose faces map to symbolic names instead of numbers.
type NamedDice struct {
	name        string
	description string
	faces       []string
}

// namedDiceFile is the YAML shape of a named dice inside game.yaml
type namedDiceFile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Faces       []string `yaml:"faces"`
}

// NewNamedDice validates and builds an immutable NamedDice.
func NewNamedDice(name, description string, faces []string) (*NamedDice, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: named dice has no name", ErrInvalidNamedDice)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: named dice %s has no description", ErrInvalidNamedDice, name)
	}
	if len(faces) < 2 {
		return nil, fmt.Errorf("%w: named dice %s needs at least 2 faces, got %d", ErrInvalidNamedDice, name, len(faces))
	}
	for i, f := range faces {
		if f == "" {
			return nil, fmt.Errorf("%w: named dice %s has an empty face at position %d", ErrInvalidNamedDice, name, i+1)
		}
	}

	cp := make([]string, len(faces))
	copy(cp, faces)
	return &NamedDice{name: name, description: description, faces: cp}, nil
}

// Name returns the identifier used in expressions (e.g. "Force" in 2dForce).
func (n *NamedDice) Name() string { return n.name }

// Description returns the human description of the dice.
func (n *NamedDice) Description() string { return n.description }

// FacesCount is the number of faces, which is also the repartition key of the dice.
func (n *NamedDice) FacesCount() int { return len(n.faces) }

// Faces returns a copy of the ordered face names.
func (n *NamedDice) Faces() []string {
	cp := make([]string, len(n.faces))
	copy(cp, n.faces)
	return cp
}

// FaceName maps a roll result in [1, FacesCount] to its face name.
func (n *NamedDice) FaceName(result int) (string, error) {
	if result < 1 || result > len(n.faces) {
		return "", fmt.Errorf("could not find associated name to value [%d] within [%s] dice", result, n.name)
	}
	return n.faces[result-1], nil
}

// GameContext is the catalog of named dice shared by every player of a table.
// It is read-only while expressions are parsed and resolved.
type GameContext struct {
	NamedDice map[string]*NamedDice
}

// NewGameContext creates an empty catalog.
func NewGameContext() *GameContext {
	return &GameContext{NamedDice: make(map[string]*NamedDice)}
}

// Register adds a named dice to the catalog, replacing any dice with the same name.
func (g *GameContext) Register(nd *NamedDice) {
	if g.NamedDice == nil {
		g.NamedDice = make(map[string]*NamedDice)
	}
	g.NamedDice[nd.Name()] = nd
}

// Lookup finds a named dice by its exact name.
func (g *GameContext) Lookup(name string) (*NamedDice, bool) {
	if g == nil || g.NamedDice == nil {
		return nil, false
	}
	nd, ok := g.NamedDice[name]
	return nd, ok
}

// PlayerContext holds the mutable per-player state touched by a resolution:
// throws repartitions keyed by face count and stat values.
//
// Resolutions for the same player must be serialized with Lock/Unlock since
// repartition updates are not atomic.
type PlayerContext struct {
	mu sync.Mutex

	Name         string                     `yaml:"name"`
	Stats        map[string]float64         `yaml:"stats"`
	Repartitions map[int]*ThrowsRepartition `yaml:"repartitions"`
}

// NewPlayerContext creates a player with all maps initialized.
func NewPlayerContext(name string) *PlayerContext {
	return &PlayerContext{
		Name:         name,
		Stats:        make(map[string]float64),
		Repartitions: make(map[int]*ThrowsRepartition),
	}
}

// Lock acquires exclusive access for a resolution.
func (p *PlayerContext) Lock() { p.mu.Lock() }

// Unlock releases exclusive access.
func (p *PlayerContext) Unlock() { p.mu.Unlock() }

// Stat returns a stat value and whether it exists.
func (p *PlayerContext) Stat(name string) (float64, bool) {
	if p.Stats == nil {
		return 0, false
	}
	v, ok := p.Stats[name]
	return v, ok
}

// Repartition returns the repartition for a face count, creating it the first time
// that face count is rolled for this player. Entries are never removed.
func (p *PlayerContext) Repartition(faces int) *ThrowsRepartition {
	if p.Repartitions == nil {
		p.Repartitions = make(map[int]*ThrowsRepartition)
	}
	if rep, ok := p.Repartitions[faces]; ok {
		return rep
	}
	rep := NewThrowsRepartition(faces)
	p.Repartitions[faces] = rep
	return rep
}

// normalize fills nil maps and recomputes cached totals after decoding.
func (p *PlayerContext) normalize() error {
	if p.Stats == nil {
		p.Stats = make(map[string]float64)
	}
	if p.Repartitions == nil {
		p.Repartitions = make(map[int]*ThrowsRepartition)
	}
	for faces, rep := range p.Repartitions {
		if rep == nil {
			delete(p.Repartitions, faces)
			continue
		}
		if rep.Faces == 0 {
			rep.Faces = faces
		}
		if rep.Faces != faces {
			return fmt.Errorf("repartition keyed %d describes a %d faced dice", faces, rep.Faces)
		}
		if err := rep.Validate(); err != nil {
			return fmt.Errorf("repartition d%d: %w", faces, err)
		}
	}
	return nil
}
