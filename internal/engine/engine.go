// Package engine wraps the parser, compiler, and VM into the single
// entry point a front-end uses: construct one Engine per session and
// call EvalCell for each line of input.
package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"quanta/internal/binder"
	"quanta/internal/compiler"
	"quanta/internal/diag"
	"quanta/internal/parser"
	"quanta/internal/registry"
	"quanta/internal/value"
	"quanta/internal/vm"
)

// Output is the result of evaluating one cell.
type Output struct {
	Value       value.Value
	Diagnostics []diag.Diagnostic
}

// Engine composes the pipeline and persists the symbol table across
// cells for the lifetime of a session. An Engine does no locking:
// callers must not run EvalCell on one Engine from several goroutines
// at once.
type Engine struct {
	registry *registry.Registry
	state    *vm.State
}

// New builds an Engine with the default function registry and seeds
// the constants i, j (both the imaginary unit), pi, and π.
func New() *Engine {
	state := vm.NewState()
	state.Symbols["i"] = value.Complex(complex(0, 1))
	state.Symbols["j"] = value.Complex(complex(0, 1))
	state.Symbols["pi"] = value.Number(math.Pi)
	state.Symbols["π"] = value.Number(math.Pi)
	return &Engine{registry: registry.New(), state: state}
}

// EvalCell parses, binds, lowers, and evaluates one cell's text,
// mutating the Engine's symbol table. It never returns an error: every
// failure mode is folded into the returned diagnostics or the value
// sentinel itself, per the pipeline's totality rule.
func (e *Engine) EvalCell(text string) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			out = Output{
				Value:       value.String("<internal-error>"),
				Diagnostics: []diag.Diagnostic{diag.New(diag.Internal, fmt.Sprintf("%+v", errors.Errorf("panic evaluating cell: %v", r)))},
			}
		}
	}()

	parsed := parser.Parse(text)
	defines, uses := binder.Bind(parsed.Expr)

	chunk := compiler.NewCompiler().Compile(parsed.Expr)
	v, runtimeDiags := vm.New(e.registry, e.state).Run(chunk)

	v = canonicalizeDisplay(v)

	diags := append(append([]diag.Diagnostic{}, parsed.Diagnostics...), runtimeDiags...)
	for i := range diags {
		diags[i].Defines = defines
		diags[i].Uses = uses
	}
	return Output{Value: v, Diagnostics: diags}
}

// canonicalizeDisplay applies the one designed display collapse: a
// Quantity whose unit string contains both "V/" and "Ω" (the shape
// Ohm's-law division leaves behind) folds to "A", leaving its
// dimension untouched.
func canonicalizeDisplay(v value.Value) value.Value {
	q, ok := v.(value.Quantity)
	if !ok {
		return v
	}
	if strings.Contains(q.Unit, "V/") && strings.Contains(q.Unit, "Ω") {
		q.Unit = "A"
		return q
	}
	return v
}
