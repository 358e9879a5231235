package data

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GameFile is the name of the named dice catalog inside a table directory.
const GameFile = "game.yaml"

// PlayersDir holds one YAML file per player.
const PlayersDir = "players"

// gameFile is the YAML shape of game.yaml
type gameFile struct {
	Dice []namedDiceFile `yaml:"dice"`
}

// Loader handles reading game catalogs and player sheets from a directory fallback hierarchy.
// The first directory is the primary one and receives saved players.
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a new Data Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
	}
}

// LoadGame reads the named dice catalog. A table without game.yaml has an empty catalog.
func (l *Loader) LoadGame() (*GameContext, error) {
	var gf gameFile
	if err := l.load(GameFile, &gf); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewGameContext(), nil
		}
		return nil, err
	}

	game := NewGameContext()
	for _, d := range gf.Dice {
		nd, err := NewNamedDice(d.Name, d.Description, d.Faces)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", GameFile, err)
		}
		game.Register(nd)
	}
	return game, nil
}

// LoadPlayer reads players/<name>.yaml. Unknown players start with a fresh context.
func (l *Loader) LoadPlayer(name string) (*PlayerContext, error) {
	p := NewPlayerContext(name)
	ref := filepath.Join(PlayersDir, fmt.Sprintf("%s.yaml", name))
	if err := l.load(ref, p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewPlayerContext(name), nil
		}
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}
	if err := p.normalize(); err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", name, err)
	}
	return p, nil
}

// SavePlayer writes the player sheet, repartitions included, to the primary directory.
func (l *Loader) SavePlayer(p *PlayerContext) error {
	if len(l.dataDirs) == 0 {
		return fmt.Errorf("no data directory to save player %s into", p.Name)
	}

	dir := filepath.Join(l.dataDirs[0], PlayersDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode player %s: %w", p.Name, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.yaml", p.Name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil {
		return fmt.Errorf("failed to write player %s: %w", p.Name, err)
	}
	return os.Rename(tmp, path)
}

func (l *Loader) load(ref string, target interface{}) error {
	for _, dir := range l.dataDirs {
		path := filepath.Join(dir, ref)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode yaml reference %s: %w", ref, err)
		}
		return nil
	}
	return fmt.Errorf("could not find or open reference %s in any available data directory: %w", ref, os.ErrNotExist)
}
