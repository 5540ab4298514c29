// internal/compiler/compiler.go
package compiler

import (
	"quanta/internal/ast"
	"quanta/internal/bytecode"
	"quanta/internal/units"
	"quanta/internal/value"
)

// Compiler lowers one cell's AST to a linear Chunk, post-order:
// operands first, then the operator opcode.
type Compiler struct {
	chunk *bytecode.Chunk
}

// NewCompiler returns a Compiler with a fresh empty Chunk.
func NewCompiler() *Compiler {
	return &Compiler{chunk: bytecode.NewChunk()}
}

// Compile lowers expr into the Compiler's Chunk and returns it.
func (c *Compiler) Compile(expr ast.Expr) *bytecode.Chunk {
	c.compile(expr)
	return c.chunk
}

func (c *Compiler) compile(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Number:
		c.chunk.Const(value.Number(e.Value))
	case *ast.Complex:
		c.chunk.Const(value.Complex(complex(e.Re, e.Im)))
	case *ast.Bool:
		c.chunk.Const(value.Bool(e.Value))
	case *ast.String:
		c.chunk.Const(value.String(e.Value))
	case *ast.Quantity:
		c.compileQuantity(e)
	case *ast.Ident:
		c.chunk.LoadSym(e.Name)
	case *ast.Array:
		for _, el := range e.Elements {
			c.compile(el)
		}
	case *ast.Record:
		for _, f := range e.Fields {
			c.compile(f.Value)
		}
	case *ast.Unary:
		c.compile(e.Expr)
		c.chunk.Unary(e.Op)
	case *ast.Binary:
		c.compileBinary(e)
	case *ast.Call:
		c.compileCall(e)
	case *ast.Assign:
		c.compile(e.Expr)
		c.chunk.StoreSym(e.Name)
	case *ast.Function:
		c.chunk.Const(&value.Function{Params: e.Params, Body: e.Body})
		c.chunk.StoreSym(e.Name)
	case *ast.Error:
		c.chunk.Const(value.String("<parse-error>"))
	default:
		c.chunk.Const(value.String("<unhandled>"))
	}
}

// compileBinary handles the Convert special case: it never executes
// as a runtime binop, it lowers straight to a Convert opcode whose
// target name is read off the right operand's syntax.
func (c *Compiler) compileBinary(e *ast.Binary) {
	if e.Op == ast.Convert {
		c.compile(e.Left)
		switch r := e.Right.(type) {
		case *ast.Ident:
			c.chunk.Convert(r.Name)
		case *ast.Quantity:
			c.chunk.Convert(r.Unit)
		default:
			c.chunk.Convert("")
		}
		return
	}
	c.compile(e.Left)
	c.compile(e.Right)
	c.chunk.Binary(e.Op)
}

// compileCall lowers a Call whose callee is a bare identifier to
// CallName (reaching either the builtin registry or a stored
// UserFunction); any other callee lowers to a dynamic Invoke.
func (c *Compiler) compileCall(e *ast.Call) {
	if callee, ok := e.Callee.(*ast.Ident); ok {
		for _, a := range e.Args {
			c.compile(a)
		}
		c.chunk.CallName(callee.Name, len(e.Args))
		return
	}
	c.compile(e.Callee)
	for _, a := range e.Args {
		c.compile(a)
	}
	c.chunk.Invoke(len(e.Args))
}

// compileQuantity resolves the literal's unit; a known unit yields a
// Quantity constant whose display unit is the canonical name for its
// dimension, falling back to the unit as written for an unknown one
// (dimensionless, so that arithmetic can still proceed).
func (c *Compiler) compileQuantity(e *ast.Quantity) {
	info, ok := units.Lookup(e.Unit)
	if !ok {
		c.chunk.Const(value.Quantity{Val: e.Value, Dim: units.Zero(), Unit: e.Unit})
		return
	}
	name := info.Canonical
	if canon, ok := units.CanonicalForDim(info.Dim); ok {
		name = canon
	}
	c.chunk.Const(value.Quantity{Val: e.Value, Dim: info.Dim, Unit: name})
}
