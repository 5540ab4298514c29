package compiler

import (
	"testing"

	"quanta/internal/ast"
	"quanta/internal/bytecode"
	"quanta/internal/value"
)

func compile(t *testing.T, e ast.Expr) *bytecode.Chunk {
	t.Helper()
	return NewCompiler().Compile(e)
}

func TestCompileNumber(t *testing.T) {
	c := compile(t, &ast.Number{Value: 3})
	if len(c.Ops) != 1 || c.Ops[0].Code != bytecode.OpConst {
		t.Fatalf("got %+v", c.Ops)
	}
	if n, ok := c.Ops[0].Const.(value.Number); !ok || n != 3 {
		t.Errorf("const = %+v", c.Ops[0].Const)
	}
}

func TestCompileAssignLeavesStoreLast(t *testing.T) {
	c := compile(t, &ast.Assign{Name: "x", Expr: &ast.Number{Value: 5}})
	if len(c.Ops) != 2 {
		t.Fatalf("got %d ops", len(c.Ops))
	}
	if c.Ops[0].Code != bytecode.OpConst || c.Ops[1].Code != bytecode.OpStoreSym {
		t.Errorf("got %+v", c.Ops)
	}
	if c.Ops[1].Name != "x" {
		t.Errorf("store name = %s", c.Ops[1].Name)
	}
}

func TestCompileConvertLowersToConvertOp(t *testing.T) {
	e := &ast.Binary{
		Op:    ast.Convert,
		Left:  &ast.Quantity{Value: 10, Unit: "m"},
		Right: &ast.Ident{Name: "in"},
	}
	c := compile(t, e)
	if len(c.Ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(c.Ops))
	}
	if c.Ops[0].Code != bytecode.OpConst {
		t.Errorf("op0 = %+v", c.Ops[0])
	}
	if c.Ops[1].Code != bytecode.OpConvert || c.Ops[1].Name != "in" {
		t.Errorf("op1 = %+v", c.Ops[1])
	}
}

func TestCompileConvertFromQuantityRHS(t *testing.T) {
	// "d to in" where "in" parsed bare as a Quantity{1,"in"}: the
	// Convert target comes from the quantity's unit string.
	e := &ast.Binary{
		Op:    ast.Convert,
		Left:  &ast.Ident{Name: "d"},
		Right: &ast.Quantity{Value: 1, Unit: "in"},
	}
	c := compile(t, e)
	if c.Ops[len(c.Ops)-1].Name != "in" {
		t.Errorf("convert target = %s, want in", c.Ops[len(c.Ops)-1].Name)
	}
}

func TestCompileConvertUnknownRHSFormIsEmptyTarget(t *testing.T) {
	e := &ast.Binary{Op: ast.Convert, Left: &ast.Ident{Name: "d"}, Right: &ast.Number{Value: 1}}
	c := compile(t, e)
	last := c.Ops[len(c.Ops)-1]
	if last.Code != bytecode.OpConvert || last.Name != "" {
		t.Errorf("got %+v", last)
	}
}

func TestCompileCallByName(t *testing.T) {
	e := &ast.Call{Callee: &ast.Ident{Name: "sin"}, Args: []ast.Expr{&ast.Number{Value: 1}}}
	c := compile(t, e)
	last := c.Ops[len(c.Ops)-1]
	if last.Code != bytecode.OpCallName || last.Name != "sin" || last.Argc != 1 {
		t.Errorf("got %+v", last)
	}
}

func TestCompileQuantityUsesCanonicalUnit(t *testing.T) {
	// A literal quantity in grams should lower to a Quantity constant
	// labelled kg, the canonical unit for its dimension. The compiler
	// only relabels: the parser has already applied the unit's scale,
	// so the value is left as given.
	e := &ast.Quantity{Value: 5, Unit: "g"}
	c := compile(t, e)
	q, ok := c.Ops[0].Const.(value.Quantity)
	if !ok {
		t.Fatalf("const = %T", c.Ops[0].Const)
	}
	if q.Unit != "kg" || q.Val != 5 {
		t.Errorf("got %+v", q)
	}
}

func TestCompileQuantityUnknownUnitIsDimensionless(t *testing.T) {
	e := &ast.Quantity{Value: 7, Unit: "frobs"}
	c := compile(t, e)
	q, ok := c.Ops[0].Const.(value.Quantity)
	if !ok || q.Unit != "frobs" || !q.Dim.IsZero() {
		t.Errorf("got %+v (ok=%v)", q, ok)
	}
}

func TestCompileFunctionCapturesBodyAST(t *testing.T) {
	body := &ast.Binary{Op: ast.Add, Left: &ast.Ident{Name: "x"}, Right: &ast.Ident{Name: "y"}}
	e := &ast.Function{Name: "f", Params: []string{"x", "y"}, Body: body}
	c := compile(t, e)
	if len(c.Ops) != 2 || c.Ops[0].Code != bytecode.OpConst {
		t.Fatalf("got %+v", c.Ops)
	}
	fn, ok := c.Ops[0].Const.(*value.Function)
	if !ok {
		t.Fatalf("const = %T", c.Ops[0].Const)
	}
	if fn.Body != body {
		t.Error("function value should capture the body AST node directly")
	}
}
