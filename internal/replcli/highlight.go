// internal/replcli/highlight.go
package replcli

import "strings"

// The classifier mirrors the cell grammar with two closed word sets:
// the builtin/keyword names and the unit symbols a literal may carry,
// the latter with an optional single metric prefix.
var keywords = map[string]bool{
	"to": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true,
	"sin_deg": true, "cos_deg": true, "tan_deg": true,
	"pi": true, "i": true, "j": true, "π": true,
}

var unitBases = map[string]bool{
	"Ω": true, "ohm": true, "V": true, "A": true, "F": true, "H": true,
	"S": true, "Hz": true, "m": true, "s": true, "kg": true, "K": true,
	"mol": true, "cd": true, "rad": true, "deg": true, "°": true,
}

var unitPrefixes = []string{"k", "M", "m", "u", "μ", "n", "p"}

func isUnitToken(tok string) bool {
	if unitBases[tok] {
		return true
	}
	for _, p := range unitPrefixes {
		if strings.HasPrefix(tok, p) && unitBases[tok[len(p):]] {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == 'Ω' || r == 'μ' || r == 'π' || r == '°'
}

// Highlight renders one cell's source text with ANSI colors: numbers
// cyan, keywords yellow, unit symbols magenta, operators blue. A REPL
// built without a TTY should not call this; the text comes back
// unchanged apart from the escape codes.
func Highlight(line string) string {
	var sb strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); {
		r := runes[i]
		if isWordRune(r) {
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tok := string(runes[i:j])
			// A quantity literal like 10kΩ groups as one word; peel the
			// leading digit run off so the number and its unit color
			// separately, the same split the lexer makes.
			if tok[0] >= '0' && tok[0] <= '9' {
				k := 0
				for k < len(tok) && (tok[k] == '.' || tok[k] == '_' || (tok[k] >= '0' && tok[k] <= '9')) {
					k++
				}
				sb.WriteString(colorCyan + tok[:k] + colorReset)
				tok = tok[k:]
			}
			switch {
			case tok == "":
			case keywords[tok]:
				sb.WriteString(colorYellow + tok + colorReset)
			case isUnitToken(tok):
				sb.WriteString(colorMagenta + tok + colorReset)
			default:
				sb.WriteString(tok)
			}
			i = j
			continue
		}
		if strings.ContainsRune("+-*/%^(),=", r) {
			sb.WriteString(colorBlue + string(r) + colorReset)
		} else {
			sb.WriteRune(r)
		}
		i++
	}
	return sb.String()
}
