package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

// Registry manages the CEL environment used to evaluate table formulas such as
// "roll('1d20') + stats.dex >= 15.0".
type Registry struct {
	env *cel.Env
}

// NewRegistry initializes the CEL environment. roll backs the roll() function.
func NewRegistry(roll RollFunc) (*Registry, error) {
	if roll == nil {
		return nil, fmt.Errorf("a roll function is required")
	}
	env, err := cel.NewEnv(
		ext.Strings(),

		cel.Variable("player", cel.StringType),
		cel.Variable("stats", cel.MapType(cel.StringType, cel.DoubleType)),

		cel.Function("roll",
			cel.Overload("roll_string",
				[]*cel.Type{cel.StringType},
				cel.DoubleType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					expr, ok := arg.Value().(string)
					if !ok {
						return types.NewErr("roll expects a string, got %v", arg.Type())
					}
					v, err := roll(expr)
					if err != nil {
						return types.NewErr("roll(%q): %v", expr, err)
					}
					return types.Double(v)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create formula environment: %w", err)
	}
	return &Registry{env: env}, nil
}

// Eval executes a CEL expression against the provided context.
func (r *Registry) Eval(expression string, context map[string]any) (any, error) {
	ast, iss := r.env.Compile(expression)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return nil, err
	}
	out, _, err := prog.Eval(context)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
