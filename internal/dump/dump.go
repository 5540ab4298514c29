// Package dump pretty-prints a cell's parsed AST and lowered Chunk
// for debugging, writing to an io.Writer rather than stdout directly.
package dump

import (
	"fmt"
	"io"

	"github.com/kr/pretty"
	krtext "github.com/kr/text"

	"quanta/internal/ast"
	"quanta/internal/bytecode"
	"quanta/internal/compiler"
	"quanta/internal/parser"
)

// Cell pretty-prints one cell's parse result, AST, and lowered Chunk
// to w: the AST via kr/pretty, then the parse diagnostics (if any),
// then the opcode stream one instruction per line.
func Cell(w io.Writer, cellText string) error {
	parsed := parser.Parse(cellText)
	if _, err := fmt.Fprintf(w, "=== ast ===\n%s\n", indent(pretty.Sprint(parsed.Expr))); err != nil {
		return err
	}
	if len(parsed.Diagnostics) > 0 {
		if _, err := fmt.Fprintf(w, "=== diagnostics ===\n%s\n", indent(pretty.Sprint(parsed.Diagnostics))); err != nil {
			return err
		}
	}
	chunk := compiler.NewCompiler().Compile(parsed.Expr)
	if _, err := fmt.Fprintf(w, "=== chunk ===\n%s", Chunk(chunk)); err != nil {
		return err
	}
	return nil
}

// Chunk renders a Chunk's opcodes one per line, each with its operand
// rendered in the form most useful for the instruction kind.
func Chunk(c *bytecode.Chunk) string {
	var out string
	for i, op := range c.Ops {
		out += fmt.Sprintf("%4d  %s\n", i, opString(op))
	}
	return out
}

func opString(op bytecode.Op) string {
	switch op.Code {
	case bytecode.OpConst:
		return fmt.Sprintf("CONST      %s", op.Const.Display())
	case bytecode.OpLoadSym:
		return fmt.Sprintf("LOAD_SYM   %s", op.Name)
	case bytecode.OpStoreSym:
		return fmt.Sprintf("STORE_SYM  %s", op.Name)
	case bytecode.OpUnary:
		return fmt.Sprintf("UNARY      %s", unaryOpString(op.UnaryOp))
	case bytecode.OpBinary:
		return fmt.Sprintf("BINARY     %s", binaryOpString(op.BinaryOp))
	case bytecode.OpLoadUnit:
		return fmt.Sprintf("LOAD_UNIT  %s", op.Name)
	case bytecode.OpCallName:
		return fmt.Sprintf("CALL_NAME  %s/%d", op.Name, op.Argc)
	case bytecode.OpInvoke:
		return fmt.Sprintf("INVOKE     %d", op.Argc)
	case bytecode.OpConvert:
		return fmt.Sprintf("CONVERT    %s", op.Name)
	default:
		return "???"
	}
}

func unaryOpString(op ast.UnaryOp) string {
	if op == ast.UnaryMinus {
		return "-"
	}
	return "+"
}

func binaryOpString(op ast.BinaryOp) string {
	switch op {
	case ast.Add:
		return "+"
	case ast.Sub:
		return "-"
	case ast.Mul:
		return "*"
	case ast.Div:
		return "/"
	case ast.Mod:
		return "%"
	case ast.Pow:
		return "^"
	case ast.Parallel:
		return "//"
	case ast.Convert:
		return "to"
	default:
		return "?"
	}
}

func indent(s string) string { return krtext.Indent(s, "  ") }
