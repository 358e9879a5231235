package session

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/parser"
	"github.com/suderio/dicer/internal/rules"
)

// DefaultPlayer rolls when no player is named.
const DefaultPlayer = "GM"

// ErrInvalidPlayerName is returned for player names that cannot name a player file.
var ErrInvalidPlayerName = errors.New("player names may only contain letters, digits, '_' and '-'")

var playerName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// HelpText describes the commands understood by Execute.
const HelpText = `Roll dice expressions such as 3d6+, 2d20max + $dex, 1d(1d8+3)*2 or 2dForce.
  <expression>              roll as the current player
  by: <player> <expression> roll as another player
  check <formula>           evaluate a formula, e.g. roll('1d20') + stats.dex >= 15.0
  set <stat> <value>        set a player stat, used as $<stat>
  stats                     list the player stats
  dice                      list the named dices of the table
  weights <faces>           show the repartition of a face count
  history                   show the latest rolls of the player
Suffixes must touch the throw: + sums, max keeps the highest, min the lowest.`

// Store defines the dependency required by Session to persist events
type Store interface {
	Append(evt engine.Event) error
	Load() ([]engine.Event, error)
	Close() error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithLimits bounds the dice count and faces of every parsed expression.
func WithLimits(howMany, faces int) Option {
	return func(s *Session) {
		s.parseOpts = append(s.parseOpts, parser.WithLimits(howMany, faces))
		if faces > 0 {
			s.maxFaces = faces
		}
	}
}

// WithDefaultPlayer names the player used when an input names none.
func WithDefaultPlayer(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.defaultPlayer = name
		}
	}
}

// Session manages the loop of taking commands, resolving them, persisting events and projecting the TableState.
type Session struct {
	loader        *data.Loader
	store         Store
	resolver      *engine.Resolver
	game          *data.GameContext
	parseOpts     []parser.Option
	maxFaces      int
	defaultPlayer string
	log           *zap.Logger

	mu      sync.Mutex
	players map[string]*data.PlayerContext
	state   *engine.TableState
}

// NewSession loads the game catalog through loader and replays the store.
func NewSession(loader *data.Loader, store Store, resolver *engine.Resolver, opts ...Option) (*Session, error) {
	s := &Session{
		loader:        loader,
		store:         store,
		resolver:      resolver,
		defaultPlayer: DefaultPlayer,
		maxFaces:      parser.MaximumDiceFaces,
		log:           zap.NewNop(),
		players:       make(map[string]*data.PlayerContext),
	}
	for _, opt := range opts {
		opt(s)
	}

	game, err := loader.LoadGame()
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	s.game = game

	if err := s.RebuildState(); err != nil {
		return nil, err
	}
	return s, nil
}

// RebuildState reads the entire event log from the store and projects the latest TableState
func (s *Session) RebuildState() error {
	events, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load event log: %w", err)
	}

	state, err := engine.NewProjector().Build(events)
	if err != nil {
		return fmt.Errorf("failed to project table state: %w", err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// State returns the current projected TableState
func (s *Session) State() *engine.TableState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Game returns the named dice catalog of the table.
func (s *Session) Game() *data.GameContext {
	return s.game
}

// DefaultPlayer returns the player used when an input names none.
func (s *Session) DefaultPlayer() string {
	return s.defaultPlayer
}

// Player returns a player context, loading it on first use.
func (s *Session) Player(name string) (*data.PlayerContext, error) {
	if name == "" {
		name = s.defaultPlayer
	}
	if !playerName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlayerName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[name]; ok {
		return p, nil
	}
	p, err := s.loader.LoadPlayer(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", name, err)
	}
	s.players[name] = p
	return p, nil
}

// Roll parses and resolves an expression for a player, then records it.
// Repartitions mutated before a resolution error are still saved.
func (s *Session) Roll(player, expression string) (*engine.RolledEvent, error) {
	p, err := s.Player(player)
	if err != nil {
		return nil, err
	}
	p.Lock()
	defer p.Unlock()
	return s.roll(p, expression)
}

// roll expects the player lock to be held.
func (s *Session) roll(p *data.PlayerContext, expression string) (*engine.RolledEvent, error) {
	expr, err := parser.Parse(s.game, expression, s.parseOpts...)
	if err != nil {
		return nil, err
	}

	res, resolveErr := s.resolver.Resolve(p, expr)
	if err := s.loader.SavePlayer(p); err != nil {
		return nil, fmt.Errorf("failed to save player %s: %w", p.Name, err)
	}
	if resolveErr != nil {
		return nil, resolveErr
	}

	evt := engine.NewRolledEvent(p.Name, expression, res)
	if err := s.ApplyAndAppend(evt); err != nil {
		return nil, err
	}
	s.log.Info("rolled",
		zap.String("player", p.Name),
		zap.String("text", res.Text),
	)
	return evt, nil
}

// SetStat stores a stat value on a player.
func (s *Session) SetStat(player, stat string, value float64) (*engine.StatChangedEvent, error) {
	p, err := s.Player(player)
	if err != nil {
		return nil, err
	}
	stat = strings.TrimPrefix(stat, "$")
	if stat == "" {
		return nil, fmt.Errorf("a stat name is required")
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return nil, fmt.Errorf("stat %s must be a finite number", stat)
	}

	p.Lock()
	defer p.Unlock()
	p.Stats[stat] = value
	if err := s.loader.SavePlayer(p); err != nil {
		return nil, fmt.Errorf("failed to save player %s: %w", p.Name, err)
	}

	evt := &engine.StatChangedEvent{Player: p.Name, Stat: stat, Value: value, Time: time.Now().UTC()}
	if err := s.ApplyAndAppend(evt); err != nil {
		return nil, err
	}
	return evt, nil
}

// Check evaluates a formula for a player. Every roll() inside it is recorded.
func (s *Session) Check(player, formula string) (any, error) {
	p, err := s.Player(player)
	if err != nil {
		return nil, err
	}
	p.Lock()
	defer p.Unlock()

	registry, err := rules.NewRegistry(func(expression string) (float64, error) {
		evt, err := s.roll(p, expression)
		if err != nil {
			return 0, err
		}
		if !evt.HasScalar {
			return 0, fmt.Errorf("%s does not resolve to a single value", expression)
		}
		return evt.Scalar, nil
	})
	if err != nil {
		return nil, err
	}
	return registry.Eval(formula, rules.ContextFromPlayer(p))
}

// Weights returns a copy of the repartition a player has for a face count.
func (s *Session) Weights(player string, faces int) (*data.ThrowsRepartition, error) {
	if faces < 2 || faces > s.maxFaces {
		return nil, &parser.DiceFacesOutOfRange{Value: float64(faces), Max: s.maxFaces}
	}
	p, err := s.Player(player)
	if err != nil {
		return nil, err
	}
	p.Lock()
	defer p.Unlock()

	rep, ok := p.Repartitions[faces]
	if !ok {
		rep = data.NewThrowsRepartition(faces)
	}
	out := &data.ThrowsRepartition{
		Faces:   rep.Faces,
		Weights: slices.Clone(rep.Weights),
		History: slices.Clone(rep.History),
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyAndAppend persists an event and folds it into the TableState.
func (s *Session) ApplyAndAppend(evt engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Append(evt); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return evt.Apply(s.state)
}

// Execute takes a raw command line from a frontend, runs it and returns the text to display.
func (s *Session) Execute(input string) (string, error) {
	in := ParseInput(input)
	player := in.Player
	if player == "" {
		player = s.defaultPlayer
	}

	switch in.Command {
	case "":
		return "", nil
	case CommandHelp:
		return HelpText, nil
	case CommandRoll:
		evt, err := s.Roll(player, in.Expression)
		if err != nil {
			return "", parser.MapError(in.Expression, err)
		}
		return evt.Message(), nil
	case CommandCheck:
		out, err := s.Check(player, in.Expression)
		if err != nil {
			return "", fmt.Errorf("check failed: %w", err)
		}
		return fmt.Sprintf("%s: %s => %v", player, in.Expression, out), nil
	case CommandSet:
		if len(in.Args) != 2 {
			return "", fmt.Errorf("usage: set <stat> <value>")
		}
		v, err := strconv.ParseFloat(in.Args[1], 64)
		if err != nil {
			return "", fmt.Errorf("stat value %q is not a number", in.Args[1])
		}
		evt, err := s.SetStat(player, in.Args[0], v)
		if err != nil {
			return "", err
		}
		return evt.Message(), nil
	case CommandStats:
		return s.describeStats(player)
	case CommandDice:
		return s.describeDice(), nil
	case CommandWeights:
		if len(in.Args) != 1 {
			return "", fmt.Errorf("usage: weights <faces>")
		}
		faces, err := strconv.Atoi(in.Args[0])
		if err != nil {
			return "", fmt.Errorf("faces %q is not a number", in.Args[0])
		}
		rep, err := s.Weights(player, faces)
		if err != nil {
			return "", parser.MapError(in.Args[0], err)
		}
		return fmt.Sprintf("%s d%d weights %v (total %d)", player, faces, rep.Weights, rep.Total()), nil
	case CommandHistory:
		return s.describeHistory(player), nil
	}
	return "", fmt.Errorf("unknown command %q", in.Command)
}

func (s *Session) describeStats(player string) (string, error) {
	p, err := s.Player(player)
	if err != nil {
		return "", err
	}
	p.Lock()
	defer p.Unlock()

	if len(p.Stats) == 0 {
		return fmt.Sprintf("%s has no stats", p.Name), nil
	}
	names := maps.Keys(p.Stats)
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("$%s = %s", name, parser.FormatValue(p.Stats[name])))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Session) describeDice() string {
	if len(s.game.NamedDice) == 0 {
		return "no named dices at this table"
	}
	names := maps.Keys(s.game.NamedDice)
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		nd := s.game.NamedDice[name]
		lines = append(lines, fmt.Sprintf("%s: %s [%s]", nd.Name(), nd.Description(), strings.Join(nd.Faces(), ", ")))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) describeHistory(player string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.state.Players[player]
	if !ok || len(log.Recent) == 0 {
		return fmt.Sprintf("%s has not rolled yet", player)
	}
	return strings.Join(log.Recent, "\n")
}

// Close releases the event store.
func (s *Session) Close() error {
	return s.store.Close()
}
