// Package vm implements the stack evaluator that runs a Chunk against
// a persistent symbol environment and the built-in function registry.
package vm

import (
	"math"

	"quanta/internal/ast"
	"quanta/internal/bytecode"
	"quanta/internal/compiler"
	"quanta/internal/diag"
	"quanta/internal/registry"
	"quanta/internal/units"
	"quanta/internal/value"
)

// State is the symbol environment, persistent across cells within one
// Engine.
type State struct {
	Symbols map[string]value.Value
}

// NewState returns an empty environment.
func NewState() *State {
	return &State{Symbols: make(map[string]value.Value)}
}

// clone makes a shallow copy of the symbol table, used to build the
// child scope a user-function call runs in.
func (s *State) clone() *State {
	child := NewState()
	for k, v := range s.Symbols {
		child.Symbols[k] = v
	}
	return child
}

// VM evaluates one Chunk at a time against a shared State and
// Registry.
type VM struct {
	Registry *registry.Registry
	State    *State
}

// New builds a VM over the given registry and symbol state.
func New(reg *registry.Registry, state *State) *VM {
	return &VM{Registry: reg, State: state}
}

// Run evaluates chunk to completion and returns the resulting Value
// plus any diagnostics raised along the way. The VM never panics:
// stack underflow is masked by defaulting missing operands to
// Number(0.0).
func (m *VM) Run(chunk *bytecode.Chunk) (value.Value, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	var stack []value.Value

	pop := func() value.Value {
		if len(stack) == 0 {
			return value.Number(0)
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	push := func(v value.Value) { stack = append(stack, v) }

	for _, op := range chunk.Ops {
		switch op.Code {
		case bytecode.OpConst:
			push(op.Const)

		case bytecode.OpLoadSym:
			if v, ok := m.State.Symbols[op.Name]; ok {
				push(v)
			} else {
				push(value.UnknownSymbol(op.Name))
			}

		case bytecode.OpStoreSym:
			v := pop()
			m.State.Symbols[op.Name] = v
			push(v)

		case bytecode.OpUnary:
			push(applyUnary(op.UnaryOp, pop()))

		case bytecode.OpBinary:
			right := pop()
			left := pop()
			push(m.applyBinary(op.BinaryOp, left, right))

		case bytecode.OpLoadUnit:
			push(value.String(op.Name))

		case bytecode.OpCallName:
			args := popN(pop, op.Argc)
			push(m.callName(op.Name, args, &diags))

		case bytecode.OpInvoke:
			args := popN(pop, op.Argc)
			callee := pop()
			push(m.invoke(callee, args, &diags))

		case bytecode.OpConvert:
			push(m.convert(pop(), op.Name))
		}
	}
	return pop(), diags
}

// popN pops n values off the stack via pop, restoring source order
// (the Chunk pushed them left-to-right, so popping n times yields
// them reversed).
func popN(pop func() value.Value, n int) []value.Value {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = pop()
	}
	return args
}

func applyUnary(op ast.UnaryOp, v value.Value) value.Value {
	if op == ast.UnaryPlus {
		return v
	}
	switch n := v.(type) {
	case value.Number:
		return -n
	case value.Complex:
		return value.Complex(-complex128(n))
	default:
		return value.BadUnary()
	}
}

// callName resolves a CallName op: a registered built-in takes
// priority over a same-named user function stored in the symbol
// table.
func (m *VM) callName(name string, args []value.Value, diags *[]diag.Diagnostic) value.Value {
	if meta, ok := m.Registry.Lookup(name); ok {
		v, d := meta.Fn(args)
		if d != nil {
			*diags = append(*diags, *d)
		}
		return v
	}
	if fn, ok := m.State.Symbols[name].(*value.Function); ok {
		return m.callUserFunction(fn, args, diags)
	}
	return value.UnknownFunction(name)
}

func (m *VM) invoke(callee value.Value, args []value.Value, diags *[]diag.Diagnostic) value.Value {
	switch c := callee.(type) {
	case *value.Function:
		return m.callUserFunction(c, args, diags)
	case value.String:
		return m.callName(string(c), args, diags)
	default:
		return value.NotCallable()
	}
}

// callUserFunction builds a cloned child scope, binds parameters in
// order, re-lowers the captured body AST, and evaluates it there.
// Mutations in the body are discarded along with the clone.
func (m *VM) callUserFunction(fn *value.Function, args []value.Value, diags *[]diag.Diagnostic) value.Value {
	child := m.State.clone()
	for i, p := range fn.Params {
		if i < len(args) {
			child.Symbols[p] = args[i]
		}
	}
	chunk := compiler.NewCompiler().Compile(fn.Body)
	childVM := New(m.Registry, child)
	v, childDiags := childVM.Run(chunk)
	*diags = append(*diags, childDiags...)
	return v
}

// convert implements the Convert opcode. The target token is first
// collapsed to its canonical unit name (so a prefixed target like
// "kΩ" converts to Ω, the same label the literal would have lowered
// to), and that canonical unit supplies the destination scale.
func (m *VM) convert(v value.Value, target string) value.Value {
	q, ok := v.(value.Quantity)
	if !ok {
		return value.ConvertNonQuantity()
	}
	toName := target
	if _, _, canon, ok := units.ResolvePrefixed(target); ok {
		toName = canon
	}
	from, okFrom := units.Lookup(q.Unit)
	to, okTo := units.Lookup(toName)
	if !okFrom || !okTo || !from.Dim.IsCompatible(to.Dim) {
		return value.UnitConvertError()
	}
	baseValue := q.Val * from.Scale
	return value.Quantity{Val: baseValue / to.Scale, Dim: to.Dim, Unit: to.Canonical}
}

// applyBinary dispatches one binary operator over the value pairs it
// accepts; anything outside the table is a type-error sentinel.
func (m *VM) applyBinary(op ast.BinaryOp, left, right value.Value) value.Value {
	switch op {
	case ast.Add:
		return addSub(left, right, true)
	case ast.Sub:
		return addSub(left, right, false)
	case ast.Mul:
		return mul(left, right)
	case ast.Div:
		return div(left, right)
	case ast.Mod:
		if a, ok := left.(value.Number); ok {
			if b, ok := right.(value.Number); ok {
				return value.Number(math.Mod(float64(a), float64(b)))
			}
		}
		return value.TypeError("%")
	case ast.Pow:
		if a, ok := left.(value.Number); ok {
			if b, ok := right.(value.Number); ok {
				return value.Number(math.Pow(float64(a), float64(b)))
			}
		}
		return value.TypeError("^")
	case ast.Parallel:
		return parallel(left, right)
	default:
		// ast.Convert never executes as a binop: the compiler always
		// lowers Binary{Convert,...} straight to an OpConvert
		// instruction. Reaching here means a Chunk was built by hand.
		return value.String("<unexpected-convert-binop>")
	}
}

func sameUnit(ua string, da units.Dim, ub string, db units.Dim) bool {
	return da.IsCompatible(db) && ua == ub
}

func addSub(left, right value.Value, add bool) value.Value {
	sign := 1.0
	op := "+"
	if !add {
		sign = -1.0
		op = "-"
	}
	switch a := left.(type) {
	case value.Number:
		switch b := right.(type) {
		case value.Number:
			return value.Number(float64(a) + sign*float64(b))
		case value.Complex:
			return value.Complex(complex(float64(a), 0) + complex128(b)*complex(sign, 0))
		}
	case value.Complex:
		switch b := right.(type) {
		case value.Number:
			return value.Complex(complex128(a) + complex(float64(b)*sign, 0))
		case value.Complex:
			return value.Complex(complex128(a) + complex128(b)*complex(sign, 0))
		}
	case value.Quantity:
		if b, ok := right.(value.Quantity); ok && sameUnit(a.Unit, a.Dim, b.Unit, b.Dim) {
			return value.Quantity{Val: a.Val + sign*b.Val, Dim: a.Dim, Unit: a.Unit}
		}
	case value.ComplexQuantity:
		if b, ok := right.(value.ComplexQuantity); ok && sameUnit(a.Unit, a.Dim, b.Unit, b.Dim) {
			return value.ComplexQuantity{Val: a.Val + complex128(b.Val)*complex(sign, 0), Dim: a.Dim, Unit: a.Unit}
		}
	}
	return value.TypeError(op)
}

func mul(left, right value.Value) value.Value {
	switch a := left.(type) {
	case value.Number:
		switch b := right.(type) {
		case value.Number:
			return value.Number(float64(a) * float64(b))
		case value.Complex:
			return value.Complex(complex(float64(a), 0) * complex128(b))
		case value.Quantity:
			return value.Quantity{Val: float64(a) * b.Val, Dim: b.Dim, Unit: b.Unit}
		case value.ComplexQuantity:
			return value.ComplexQuantity{Val: complex(float64(a), 0) * b.Val, Dim: b.Dim, Unit: b.Unit}
		}
	case value.Complex:
		switch b := right.(type) {
		case value.Number:
			return value.Complex(complex128(a) * complex(float64(b), 0))
		case value.Complex:
			return value.Complex(complex128(a) * complex128(b))
		case value.Quantity:
			return value.ComplexQuantity{Val: complex128(a) * complex(b.Val, 0), Dim: b.Dim, Unit: b.Unit}
		case value.ComplexQuantity:
			return value.ComplexQuantity{Val: complex128(a) * b.Val, Dim: b.Dim, Unit: b.Unit}
		}
	case value.Quantity:
		switch b := right.(type) {
		case value.Number:
			return value.Quantity{Val: a.Val * float64(b), Dim: a.Dim, Unit: a.Unit}
		case value.Complex:
			return value.ComplexQuantity{Val: complex128(b) * complex(a.Val, 0), Dim: a.Dim, Unit: a.Unit}
		case value.Quantity:
			return value.Quantity{Val: a.Val * b.Val, Dim: a.Dim.Add(b.Dim), Unit: a.Unit + "*" + b.Unit}
		}
	case value.ComplexQuantity:
		switch b := right.(type) {
		case value.Number:
			return value.ComplexQuantity{Val: a.Val * complex(float64(b), 0), Dim: a.Dim, Unit: a.Unit}
		case value.Complex:
			return value.ComplexQuantity{Val: a.Val * complex128(b), Dim: a.Dim, Unit: a.Unit}
		}
	}
	return value.TypeError("*")
}

func negDim(d units.Dim) units.Dim { return d.Neg() }

func div(left, right value.Value) value.Value {
	switch a := left.(type) {
	case value.Number:
		switch b := right.(type) {
		case value.Number:
			return value.Number(float64(a) / float64(b))
		case value.Complex:
			return value.Complex(complex(float64(a), 0) / complex128(b))
		case value.Quantity:
			return value.Quantity{Val: float64(a) / b.Val, Dim: negDim(b.Dim), Unit: "1/" + b.Unit}
		case value.ComplexQuantity:
			return value.ComplexQuantity{Val: complex(float64(a), 0) / b.Val, Dim: b.Dim, Unit: b.Unit}
		}
	case value.Complex:
		switch b := right.(type) {
		case value.Number:
			return value.Complex(complex128(a) / complex(float64(b), 0))
		case value.Complex:
			return value.Complex(complex128(a) / complex128(b))
		case value.Quantity:
			return value.ComplexQuantity{Val: complex128(a) / complex(b.Val, 0), Dim: negDim(b.Dim), Unit: "1/" + b.Unit}
		case value.ComplexQuantity:
			return value.ComplexQuantity{Val: complex128(a) / b.Val, Dim: negDim(b.Dim), Unit: "1/" + b.Unit}
		}
	case value.Quantity:
		switch b := right.(type) {
		case value.Number:
			return value.Quantity{Val: a.Val / float64(b), Dim: a.Dim, Unit: a.Unit}
		case value.Complex:
			return value.ComplexQuantity{Val: complex(a.Val, 0) / complex128(b), Dim: a.Dim, Unit: a.Unit}
		case value.Quantity:
			return value.Quantity{Val: a.Val / b.Val, Dim: a.Dim.Sub(b.Dim), Unit: a.Unit + "/" + b.Unit}
		}
	case value.ComplexQuantity:
		switch b := right.(type) {
		case value.Number:
			return value.ComplexQuantity{Val: a.Val / complex(float64(b), 0), Dim: a.Dim, Unit: a.Unit}
		case value.Complex:
			return value.ComplexQuantity{Val: a.Val / complex128(b), Dim: a.Dim, Unit: a.Unit}
		}
	}
	return value.TypeError("/")
}

func parallel(left, right value.Value) value.Value {
	switch a := left.(type) {
	case value.Number:
		if b, ok := right.(value.Number); ok {
			return value.Number((float64(a) * float64(b)) / (float64(a) + float64(b)))
		}
	case value.Complex:
		if b, ok := right.(value.Complex); ok {
			return value.Complex((complex128(a) * complex128(b)) / (complex128(a) + complex128(b)))
		}
	case value.Quantity:
		switch b := right.(type) {
		case value.Quantity:
			if a.Dim.IsCompatible(b.Dim) {
				return value.Quantity{Val: (a.Val * b.Val) / (a.Val + b.Val), Dim: a.Dim, Unit: a.Unit}
			}
		case value.ComplexQuantity:
			if a.Dim.IsCompatible(b.Dim) {
				ac := complex(a.Val, 0)
				return value.ComplexQuantity{Val: (ac * b.Val) / (ac + b.Val), Dim: a.Dim, Unit: a.Unit}
			}
		}
	case value.ComplexQuantity:
		switch b := right.(type) {
		case value.Quantity:
			if a.Dim.IsCompatible(b.Dim) {
				bc := complex(b.Val, 0)
				return value.ComplexQuantity{Val: (a.Val * bc) / (a.Val + bc), Dim: a.Dim, Unit: a.Unit}
			}
		case value.ComplexQuantity:
			if a.Dim.IsCompatible(b.Dim) {
				return value.ComplexQuantity{Val: (a.Val * b.Val) / (a.Val + b.Val), Dim: a.Dim, Unit: a.Unit}
			}
		}
	}
	return value.TypeError("//")
}

