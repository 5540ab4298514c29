// Package registry implements the default table of built-in functions.
// The VM consults it first when resolving a CallName; a user-defined
// function is reached only when no built-in has that name.
package registry

import (
	"math"

	"quanta/internal/diag"
	"quanta/internal/units"
	"quanta/internal/value"
)

// Func is a built-in implementation. A nil *diag.Diagnostic return
// means the call succeeded; a non-nil one carries a Domain diagnostic
// and the Value returned alongside it is the failure sentinel to push.
type Func func(args []value.Value) (value.Value, *diag.Diagnostic)

// Meta pairs one built-in's name and short docstring with its
// implementation. Nothing in this module reads Docs.
type Meta struct {
	Name string
	Docs string
	Fn   Func
}

// Registry is the closed table of built-ins, built once at Engine
// construction and never mutated afterward.
type Registry struct {
	funcs map[string]Meta
}

// New builds the default registry.
func New() *Registry {
	r := &Registry{funcs: make(map[string]Meta)}
	r.register("pow", "Power function pow(x, y)", builtinPow)
	r.register("pi", "Constant pi", builtinPi)
	r.register("i", "Imaginary unit i", builtinI)
	r.register("sin", "Sine (radians)", trig(math.Sin))
	r.register("cos", "Cosine (radians)", trig(math.Cos))
	r.register("tan", "Tangent (radians)", trig(math.Tan))
	r.register("asin", "Arcsine (radians)", numberFn("asin", math.Asin))
	r.register("acos", "Arccos (radians)", numberFn("acos", math.Acos))
	r.register("atan", "Arctan (radians)", numberFn("atan", math.Atan))
	r.register("sin_deg", "Sine of a degree argument", degreeFn("sin_deg", math.Sin))
	r.register("cos_deg", "Cosine of a degree argument", degreeFn("cos_deg", math.Cos))
	r.register("tan_deg", "Tangent of a degree argument", degreeFn("tan_deg", math.Tan))
	return r
}

func (r *Registry) register(name, docs string, fn Func) {
	r.funcs[name] = Meta{Name: name, Docs: docs, Fn: fn}
}

// Lookup returns the named built-in, if any.
func (r *Registry) Lookup(name string) (Meta, bool) {
	m, ok := r.funcs[name]
	return m, ok
}

func domainError(name string) (value.Value, *diag.Diagnostic) {
	d := diag.New(diag.Domain, name+": argument out of domain")
	return value.TypeError(name), &d
}

func builtinPow(args []value.Value) (value.Value, *diag.Diagnostic) {
	if len(args) != 2 {
		return domainError("pow")
	}
	x, ok1 := args[0].(value.Number)
	y, ok2 := args[1].(value.Number)
	if !ok1 || !ok2 {
		return domainError("pow")
	}
	return value.Number(math.Pow(float64(x), float64(y))), nil
}

func builtinPi([]value.Value) (value.Value, *diag.Diagnostic) {
	return value.Number(math.Pi), nil
}

func builtinI([]value.Value) (value.Value, *diag.Diagnostic) {
	return value.Complex(complex(0, 1)), nil
}

// angleToRadians accepts a bare Number (already radians) or a
// dimensionless Quantity, converting via the unit's scale (so `90 °`
// resolves through the units table rather than a hardcoded constant).
func angleToRadians(v value.Value) (float64, bool) {
	switch a := v.(type) {
	case value.Number:
		return float64(a), true
	case value.Quantity:
		if !a.Dim.IsZero() {
			return 0, false
		}
		if info, ok := units.Lookup(a.Unit); ok {
			return a.Val * info.Scale, true
		}
		return a.Val, true
	default:
		return 0, false
	}
}

func trig(fn func(float64) float64) Func {
	return func(args []value.Value) (value.Value, *diag.Diagnostic) {
		if len(args) != 1 {
			return domainError("trig")
		}
		rad, ok := angleToRadians(args[0])
		if !ok {
			return domainError("trig")
		}
		return value.Number(fn(rad)), nil
	}
}

func numberFn(name string, fn func(float64) float64) Func {
	return func(args []value.Value) (value.Value, *diag.Diagnostic) {
		if len(args) != 1 {
			return domainError(name)
		}
		n, ok := args[0].(value.Number)
		if !ok {
			return domainError(name)
		}
		return value.Number(fn(float64(n))), nil
	}
}

func degreeFn(name string, fn func(float64) float64) Func {
	return func(args []value.Value) (value.Value, *diag.Diagnostic) {
		if len(args) != 1 {
			return domainError(name)
		}
		n, ok := args[0].(value.Number)
		if !ok {
			return domainError(name)
		}
		return value.Number(fn(float64(n) * math.Pi / 180)), nil
	}
}
