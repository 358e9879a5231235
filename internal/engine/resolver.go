package engine

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/parser"
)

// Resolver rolls the dices of parsed expressions and reduces them to a trace and a scalar.
type Resolver struct {
	roller *Roller
	log    *zap.Logger
}

// NewResolver builds a resolver drawing from roller. A nil logger disables logging.
func NewResolver(roller *Roller, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{roller: roller, log: log}
}

// Roller exposes the resolver's PRNG owner.
func (r *Resolver) Roller() *Roller {
	return r.roller
}

// Resolve rolls every throw of expr against the repartitions of player and reduces
// each group whose operands all resolve to a single value.
//
// The caller must hold the player lock. On error, repartitions already updated by
// earlier throws of the same call keep their new weights.
func (r *Resolver) Resolve(player *data.PlayerContext, expr *parser.Expression) (*Resolved, error) {
	if expr == nil || expr.Root == nil {
		return nil, fmt.Errorf("nothing to resolve")
	}
	if player == nil {
		player = data.NewPlayerContext("")
	}

	res := &resolution{
		Resolver: r,
		player:   player,
		maxFaces: expr.MaxFaces(),
	}
	root, err := res.group(expr.Root)
	if err != nil {
		return nil, err
	}

	out := &Resolved{
		Description: root.description,
		HasScalar:   root.single,
		Throws:      res.throws,
	}
	out.Text = expr.Signature + " : " + root.description
	if root.single {
		out.Scalar = root.scalar
		out.Text += " => " + parser.FormatValue(root.scalar)
	}

	r.log.Debug("resolved expression",
		zap.String("player", player.Name),
		zap.String("expression", expr.Signature),
		zap.Int("throws", len(res.throws)),
	)
	return out, nil
}

// resolution is the state of a single Resolve call.
type resolution struct {
	*Resolver
	player   *data.PlayerContext
	maxFaces int
	throws   []Throw
}

func (res *resolution) group(g *parser.Group) (value, error) {
	descriptions := make([]string, 0, len(g.Children))
	operands := make([]float64, 0, len(g.Children)/2+1)
	var ops []*parser.Operator
	single := true

	for i, child := range g.Children {
		if op, ok := child.(*parser.Operator); ok {
			if i%2 == 0 {
				return value{}, fmt.Errorf("operator %s in operand position %d", op.Symbol, i)
			}
			ops = append(ops, op)
			descriptions = append(descriptions, op.Symbol)
			continue
		}
		if i%2 == 1 {
			return value{}, fmt.Errorf("missing operator at position %d", i)
		}

		v, err := res.node(child)
		if err != nil {
			return value{}, err
		}
		descriptions = append(descriptions, v.description)
		operands = append(operands, v.scalar)
		single = single && v.single
	}

	out := value{description: strings.Join(descriptions, " ")}
	if !single || len(operands) == 0 {
		return out, nil
	}
	scalar, err := reduce(operands, ops)
	if err != nil {
		return value{}, err
	}
	out.scalar = scalar
	out.single = true
	return out, nil
}

func (res *resolution) node(n parser.Node) (value, error) {
	switch n := n.(type) {
	case *parser.Number:
		return value{description: parser.FormatValue(n.Value), scalar: n.Value, single: true}, nil
	case *parser.Stat:
		v, ok := res.player.Stat(n.Name)
		if !ok {
			return value{}, &parser.UnresolvedStat{Name: n.Name, Player: res.player.Name}
		}
		return value{
			description: fmt.Sprintf("$%s{%s}", n.Name, parser.FormatValue(v)),
			scalar:      v,
			single:      true,
		}, nil
	case *parser.FacedThrow:
		return res.facedThrow(n)
	case *parser.NamedThrow:
		return res.namedThrow(n)
	case *parser.Group:
		v, err := res.group(n)
		if err != nil {
			return value{}, err
		}
		v.description = "(" + v.description + ")"
		return v, nil
	case *parser.Operator:
		return value{}, fmt.Errorf("unexpected operator %s", n.Symbol)
	}
	return value{}, fmt.Errorf("unknown expression node %T", n)
}

func (res *resolution) facedThrow(t *parser.FacedThrow) (value, error) {
	faces := t.Faces
	facesLabel := strconv.Itoa(t.Faces)
	if t.FacesGroup != nil {
		inner, err := res.group(t.FacesGroup)
		if err != nil {
			return value{}, err
		}
		if !inner.single {
			return value{}, &parser.DiceFacesOutOfRange{Max: res.maxFaces, NotScalar: true}
		}
		faces = int(inner.scalar)
		if faces <= 1 || faces > res.maxFaces {
			return value{}, &parser.DiceFacesOutOfRange{Value: inner.scalar, Max: res.maxFaces}
		}
		facesLabel = "(" + inner.description + ")"
	}

	results, err := res.roll(t.HowMany, faces)
	if err != nil {
		return value{}, err
	}
	res.throws = append(res.throws, Throw{Dice: fmt.Sprintf("%dd%d", t.HowMany, faces), Results: results})

	out := value{description: fmt.Sprintf("%dd%s{%s}", t.HowMany, facesLabel, joinInts(results))}
	switch {
	case t.Method != nil:
		v, err := t.Method.Resolve(results)
		if err != nil {
			return value{}, err
		}
		out.description += t.Method.Token + "(" + parser.FormatValue(v) + ")"
		out.scalar = v
		out.single = true
	case len(results) == 1:
		out.scalar = float64(results[0])
		out.single = true
	}
	return out, nil
}

func (res *resolution) namedThrow(t *parser.NamedThrow) (value, error) {
	results, err := res.roll(t.HowMany, t.Dice.FacesCount())
	if err != nil {
		return value{}, err
	}
	names := make([]string, len(results))
	for i, face := range results {
		if names[i], err = t.Dice.FaceName(face); err != nil {
			return value{}, err
		}
	}
	res.throws = append(res.throws, Throw{Dice: fmt.Sprintf("%dd%s", t.HowMany, t.Dice.Name()), Results: results, Names: names})

	return value{
		description: fmt.Sprintf("%dd%s{%s}", t.HowMany, t.Dice.Name(), strings.Join(names, ", ")),
	}, nil
}

func (res *resolution) roll(howMany, faces int) ([]int, error) {
	rep := res.player.Repartition(faces)
	results := make([]int, 0, howMany)
	for i := 0; i < howMany; i++ {
		face, err := res.roller.Roll(rep)
		if err != nil {
			return nil, fmt.Errorf("failed to roll d%d: %w", faces, err)
		}
		results = append(results, face)
	}
	res.log.Debug("thrown",
		zap.String("player", res.player.Name),
		zap.String("dice", fmt.Sprintf("%dd%d", howMany, faces)),
		zap.Ints("results", results),
	)
	return results, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
