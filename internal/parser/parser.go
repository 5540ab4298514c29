// internal/parser/parser.go
//
// A Pratt (binding-power) parser for one calculator cell: an
// assignment, a function definition, or a bare expression.
package parser

import (
	"strconv"
	"strings"

	"quanta/internal/ast"
	"quanta/internal/diag"
	"quanta/internal/lexer"
	"quanta/internal/units"
)

// Result is everything produced by parsing one cell.
type Result struct {
	Expr        ast.Expr
	Diagnostics []diag.Diagnostic
}

// Parse lexes and parses cell text into an expression tree. It never
// fails: unrecognised input yields an *ast.Error node plus a Parse
// diagnostic.
func Parse(text string) Result {
	tokens := lexer.NewScanner(text).ScanTokens()
	p := &Parser{tokens: tokens}
	expr := p.parseTop()
	return Result{Expr: expr, Diagnostics: p.diagnostics}
}

// Parser walks a fixed token slice with a single cursor.
type Parser struct {
	tokens      []lexer.Token
	pos         int
	diagnostics []diag.Diagnostic
}

func (p *Parser) peek() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(msg string) {
	tok := p.peek()
	p.diagnostics = append(p.diagnostics, diag.NewParse(msg, &diag.Span{Start: tok.Start, End: tok.End}))
}

// looksLikeFnDef scans ahead with balanced-paren counting from an
// Ident '(' start; it reports whether the matching ')' is immediately
// followed by '='.
func (p *Parser) looksLikeFnDef() bool {
	if p.peek().Kind != lexer.Ident || p.peekAt(1).Kind != lexer.LParen {
		return false
	}
	depth := 1
	i := 2
	for {
		tok := p.peekAt(i)
		switch tok.Kind {
		case lexer.LParen:
			depth++
		case lexer.RParen:
			depth--
			if depth == 0 {
				return p.peekAt(i + 1).Kind == lexer.Assign
			}
		case lexer.EOF:
			return false
		}
		i++
	}
}

func (p *Parser) parseTop() ast.Expr {
	if p.peek().Kind == lexer.Ident {
		name := p.peek().Text
		if p.looksLikeFnDef() {
			p.advance() // name
			params := p.parseParams()
			if p.check(lexer.Assign) {
				p.advance()
			}
			body := p.parseExpr(0)
			return &ast.Function{Name: name, Params: params, Body: body}
		}
		if p.peekAt(1).Kind == lexer.Assign {
			p.advance() // name
			p.advance() // =
			expr := p.parseExpr(0)
			return &ast.Assign{Name: name, Expr: expr}
		}
	}
	return p.parseExpr(0)
}

func (p *Parser) parseParams() []string {
	var params []string
	p.advance() // '('
	for {
		switch p.peek().Kind {
		case lexer.Ident:
			params = append(params, p.advance().Text)
		case lexer.RParen:
			p.advance()
			return params
		case lexer.Comma:
			p.advance()
		default:
			return params
		}
	}
}

type bindingPower struct {
	op       ast.BinaryOp
	lbp, rbp int
	implicit bool
	valid    bool
}

// infix inspects the lookahead token and reports the binary operator
// it starts, with its binding powers. Implicit multiplication is
// recognised when the lookahead is an identifier other than "to", or
// an opening paren, with no token consumed here.
func (p *Parser) infix() bindingPower {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Plus:
		return bindingPower{ast.Add, 10, 11, false, true}
	case lexer.Minus:
		return bindingPower{ast.Sub, 10, 11, false, true}
	case lexer.Star:
		return bindingPower{ast.Mul, 20, 21, false, true}
	case lexer.Slash:
		return bindingPower{ast.Div, 20, 21, false, true}
	case lexer.Percent:
		return bindingPower{ast.Mod, 20, 21, false, true}
	case lexer.Parallel:
		return bindingPower{ast.Parallel, 18, 19, false, true}
	case lexer.Caret:
		return bindingPower{ast.Pow, 30, 29, false, true} // right-assoc
	case lexer.Ident:
		if tok.Text == "to" {
			return bindingPower{ast.Convert, 1, 2, false, true}
		}
		return bindingPower{ast.Mul, 20, 21, true, true}
	case lexer.LParen:
		return bindingPower{ast.Mul, 20, 21, true, true}
	}
	return bindingPower{}
}

func (p *Parser) parseExpr(minBP int) ast.Expr {
	lhs := p.parsePrefix()
	for {
		bp := p.infix()
		if !bp.valid || bp.lbp < minBP {
			break
		}
		if !bp.implicit {
			p.advance()
		}
		rhs := p.parseExpr(bp.rbp)
		lhs = &ast.Binary{Op: bp.op, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.advance()
	switch tok.Kind {
	case lexer.Number:
		n := parseNumberLiteral(tok.Text)
		// A number immediately followed by a unit identifier becomes a
		// quantity literal, special-cased here so `90 °` and `10kΩ`
		// parse the same as a single atom. This wins even when the
		// identifier is also a bound symbol: with m = 3, `2 m` is 2 metres.
		if p.peek().Kind == lexer.Ident {
			if _, scale, canon, ok := units.ResolvePrefixed(p.peek().Text); ok {
				p.advance()
				return &ast.Quantity{Value: n * scale, Unit: canon}
			}
		}
		return &ast.Number{Value: n}
	case lexer.Str:
		return &ast.String{Value: tok.Text}
	case lexer.Ident:
		if _, _, canon, ok := units.ResolvePrefixed(tok.Text); ok {
			return &ast.Quantity{Value: 1, Unit: canon}
		}
		if p.check(lexer.LParen) {
			return p.parseCall(tok.Text)
		}
		return &ast.Ident{Name: tok.Text}
	case lexer.Minus:
		return &ast.Unary{Op: ast.UnaryMinus, Expr: p.parseExpr(25)}
	case lexer.Plus:
		return &ast.Unary{Op: ast.UnaryPlus, Expr: p.parseExpr(25)}
	case lexer.LParen:
		e := p.parseExpr(0)
		if p.check(lexer.RParen) {
			p.advance()
		} else {
			p.errorf("unclosed parenthesis")
		}
		return e
	default:
		p.errorf("unexpected token in expression")
		return &ast.Error{}
	}
}

func (p *Parser) parseCall(name string) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	for {
		if p.check(lexer.RParen) {
			p.advance()
			break
		}
		if p.check(lexer.EOF) {
			p.errorf("unclosed call argument list")
			break
		}
		args = append(args, p.parseExpr(0))
		if p.check(lexer.Comma) {
			p.advance()
			continue
		}
		if !p.match(lexer.RParen) {
			p.errorf("unclosed call argument list")
			if !p.check(lexer.EOF) {
				p.advance() // best-effort recovery
			}
		}
		break
	}
	return &ast.Call{Callee: &ast.Ident{Name: name}, Args: args}
}

// parseNumberLiteral strips the cosmetic underscore separators the
// lexer leaves in place and parses the remaining ASCII digits/dot.
func parseNumberLiteral(text string) float64 {
	clean := strings.ReplaceAll(text, "_", "")
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return n
}
