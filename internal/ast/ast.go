// Package ast defines the expression tree produced by the parser and
// consumed by the compiler.
package ast

// UnaryOp tags a unary expression.
type UnaryOp byte

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
)

// BinaryOp tags a binary expression.
type BinaryOp byte

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Parallel
	Convert
)

// Expr is any expression node. It carries no behavior of its own; the
// compiler type-switches on the concrete type.
type Expr interface {
	exprNode()
}

// Number is a bare numeric literal with no unit.
type Number struct {
	Value float64
}

// Complex is a literal with an explicit real/imaginary part. The
// parser never builds one; complex values arise at run time from the
// seeded i/j symbols and the i() built-in.
type Complex struct {
	Re, Im float64
}

// Quantity is a numeric literal immediately followed by a single unit
// token, like `5 kg` or `10kΩ`, or a bare unit token on its own. Unit
// is the table's canonical name for that token; a composite such as
// `m/s^2` is not a unit token and parses as ordinary arithmetic.
type Quantity struct {
	Value float64
	Unit  string
}

// Bool is a literal true/false.
type Bool struct {
	Value bool
}

// String is a string literal.
type String struct {
	Value string
}

// Ident is a bare identifier: a variable reference or a seeded
// constant name (pi, i). A bare unit symbol parses as a Quantity,
// not an Ident.
type Ident struct {
	Name string
}

// Array is a bracketed list literal.
type Array struct {
	Elements []Expr
}

// RecordField is one name/value pair of a Record literal.
type RecordField struct {
	Name  string
	Value Expr
}

// Record is a brace-delimited list of name/value pairs.
type Record struct {
	Fields []RecordField
}

// Unary is a prefixed sign expression.
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

// Binary is an infix expression.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Call is a function application.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Assign binds a name to the value of an expression in the symbol
// table, where later cells can read it.
type Assign struct {
	Name string
	Expr Expr
}

// Function defines a user function: a name bound to a parameter list
// and an unevaluated body, evaluated at call time with the arguments
// bound in a copy of the caller's symbol table.
type Function struct {
	Name   string
	Params []string
	Body   Expr
}

// Error marks a node the parser could not make sense of. It carries no
// further detail; the accompanying Diagnostic explains why.
type Error struct{}

func (*Number) exprNode()   {}
func (*Complex) exprNode()  {}
func (*Quantity) exprNode() {}
func (*Bool) exprNode()     {}
func (*String) exprNode()   {}
func (*Ident) exprNode()    {}
func (*Array) exprNode()    {}
func (*Record) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}
func (*Assign) exprNode()   {}
func (*Function) exprNode() {}
func (*Error) exprNode()    {}
