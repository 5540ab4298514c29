// Package lexer turns a cell's source text into a flat token stream.
package lexer

import "unicode"

// Kind tags a Token.
type Kind byte

const (
	Number Kind = iota
	Ident
	Str
	Plus
	Minus
	Star
	Slash
	Percent
	Parallel
	Caret
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Assign
	Hash
	EOF
)

// Token is one lexical unit with its byte-offset span [Start, End) into
// the source text.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// isIdentStart reports whether r may begin an identifier: ASCII
// letters, underscore, or one of the unit/constant runes Ω μ π °.
func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		r == '_' || r == 'Ω' || r == 'μ' || r == 'π' || r == '°'
}

// Continuation is looser than start: any alphanumeric rune plus the
// same special set.
func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '°'
}

// Scanner produces a token stream from source text. It never fails:
// unrecognised bytes are skipped and a `#` comment simply ends the
// stream early with an EOF token.
type Scanner struct {
	src     []rune
	offsets []int // offsets[i] = byte offset of rune i; offsets[len(src)] = total byte length
	pos     int
}

// NewScanner prepares a Scanner over source text.
func NewScanner(source string) *Scanner {
	runes := []rune(source)
	offsets := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		offsets[i] = b
		b += len(string(r))
	}
	offsets[len(runes)] = b
	return &Scanner{src: runes, offsets: offsets}
}

func (s *Scanner) byteOffset(i int) int { return s.offsets[i] }

// ScanTokens lexes the entire source and returns the token stream,
// always terminated by an EOF token.
func (s *Scanner) ScanTokens() []Token {
	var toks []Token
	for s.pos < len(s.src) {
		start := s.pos
		ch := s.src[s.pos]
		switch {
		case ch == '#':
			s.pos = len(s.src)
		case unicode.IsSpace(ch):
			s.pos++
		case ch >= '0' && ch <= '9':
			s.pos++
			for s.pos < len(s.src) {
				c := s.src[s.pos]
				if (c >= '0' && c <= '9') || c == '.' || c == '_' {
					s.pos++
					continue
				}
				break
			}
			toks = append(toks, s.token(Number, start))
		case isIdentStart(ch):
			s.pos++
			for s.pos < len(s.src) && isIdentCont(s.src[s.pos]) {
				s.pos++
			}
			toks = append(toks, s.token(Ident, start))
		case ch == '"':
			s.pos++
			contentStart := s.pos
			for s.pos < len(s.src) && s.src[s.pos] != '"' {
				s.pos++
			}
			text := string(s.src[contentStart:s.pos])
			if s.pos < len(s.src) {
				s.pos++ // closing quote
			}
			toks = append(toks, Token{Kind: Str, Text: text, Start: s.byteOffset(start), End: s.byteOffset(s.pos)})
		case ch == '+':
			s.pos++
			toks = append(toks, s.token(Plus, start))
		case ch == '-':
			s.pos++
			toks = append(toks, s.token(Minus, start))
		case ch == '*':
			s.pos++
			toks = append(toks, s.token(Star, start))
		case ch == '%':
			s.pos++
			toks = append(toks, s.token(Percent, start))
		case ch == '^':
			s.pos++
			toks = append(toks, s.token(Caret, start))
		case ch == '(':
			s.pos++
			toks = append(toks, s.token(LParen, start))
		case ch == ')':
			s.pos++
			toks = append(toks, s.token(RParen, start))
		case ch == '[':
			s.pos++
			toks = append(toks, s.token(LBracket, start))
		case ch == ']':
			s.pos++
			toks = append(toks, s.token(RBracket, start))
		case ch == '{':
			s.pos++
			toks = append(toks, s.token(LBrace, start))
		case ch == '}':
			s.pos++
			toks = append(toks, s.token(RBrace, start))
		case ch == ',':
			s.pos++
			toks = append(toks, s.token(Comma, start))
		case ch == ':':
			s.pos++
			toks = append(toks, s.token(Colon, start))
		case ch == '=':
			s.pos++
			toks = append(toks, s.token(Assign, start))
		case ch == '/':
			s.pos++
			if s.pos < len(s.src) && s.src[s.pos] == '/' {
				s.pos++
				toks = append(toks, s.token(Parallel, start))
			} else {
				toks = append(toks, s.token(Slash, start))
			}
		default:
			s.pos++
		}
	}
	end := s.byteOffset(len(s.src))
	toks = append(toks, Token{Kind: EOF, Start: end, End: end})
	return toks
}

func (s *Scanner) token(k Kind, start int) Token {
	return Token{
		Kind:  k,
		Text:  string(s.src[start:s.pos]),
		Start: s.byteOffset(start),
		End:   s.byteOffset(s.pos),
	}
}
