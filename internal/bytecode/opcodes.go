package bytecode

import (
	"quanta/internal/ast"
	"quanta/internal/value"
)

// OpCode tags one instruction in a Chunk. A cell's Chunk is small and
// short-lived, so each Op is a tagged struct carrying its operand
// directly rather than an index into a side constant pool.
type OpCode byte

const (
	OpConst OpCode = iota
	OpLoadSym
	OpStoreSym
	OpUnary
	OpBinary
	OpLoadUnit
	OpCallName
	OpInvoke
	OpConvert
)

// Op is one instruction. Only the fields relevant to its Code are
// populated; the rest are left zero.
type Op struct {
	Code OpCode

	Const value.Value // OpConst
	Name  string      // OpLoadSym, OpStoreSym, OpLoadUnit, OpCallName, OpConvert
	Argc  int         // OpCallName, OpInvoke

	UnaryOp  ast.UnaryOp  // OpUnary
	BinaryOp ast.BinaryOp // OpBinary
}

// Chunk is the linear instruction stream lowered from one cell's AST.
type Chunk struct {
	Ops []Op
}

// NewChunk returns an empty Chunk.
func NewChunk() *Chunk { return &Chunk{} }

func (c *Chunk) emit(op Op) { c.Ops = append(c.Ops, op) }

func (c *Chunk) Const(v value.Value)    { c.emit(Op{Code: OpConst, Const: v}) }
func (c *Chunk) LoadSym(name string)    { c.emit(Op{Code: OpLoadSym, Name: name}) }
func (c *Chunk) StoreSym(name string)   { c.emit(Op{Code: OpStoreSym, Name: name}) }
func (c *Chunk) Unary(op ast.UnaryOp)   { c.emit(Op{Code: OpUnary, UnaryOp: op}) }
func (c *Chunk) Binary(op ast.BinaryOp) { c.emit(Op{Code: OpBinary, BinaryOp: op}) }
func (c *Chunk) LoadUnit(name string)   { c.emit(Op{Code: OpLoadUnit, Name: name}) }
func (c *Chunk) CallName(name string, argc int) {
	c.emit(Op{Code: OpCallName, Name: name, Argc: argc})
}
func (c *Chunk) Invoke(argc int)       { c.emit(Op{Code: OpInvoke, Argc: argc}) }
func (c *Chunk) Convert(target string) { c.emit(Op{Code: OpConvert, Name: target}) }
