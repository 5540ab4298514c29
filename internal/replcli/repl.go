// internal/replcli/repl.go
package replcli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"quanta/internal/diag"
	"quanta/internal/engine"
	"quanta/internal/value"
)

const (
	colorReset   = "\x1b[0m"
	colorDim     = "\x1b[2m"
	colorRed     = "\x1b[31m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorYellow  = "\x1b[33;1m"
)

// REPL runs the read-eval-print loop over an input/output pair. color
// is resolved once at construction so piped output never carries
// escape codes.
type REPL struct {
	eng   *engine.Engine
	out   io.Writer
	color bool
	ans   string
}

// New builds a REPL that writes to out, colored according to isTTY.
func New(out io.Writer, isTTY bool) *REPL {
	return &REPL{eng: engine.New(), out: out, color: isTTY}
}

// NewForFile detects TTY-ness on a raw file descriptor via
// mattn/go-isatty, the way a CLI decides whether to color its output.
func NewForFile(out io.Writer, fd uintptr) *REPL {
	return New(out, isatty.IsTerminal(fd))
}

// Start reads lines from in until EOF or a line equal to "exit",
// echoing a ">>> " prompt and the evaluated display string for each
// cell.
func (r *REPL) Start(in io.Reader) {
	fmt.Fprintln(r.out, r.styled(colorDim, "quanta | Ctrl-D or 'exit' to quit"))
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, r.styled(colorCyan, ">>> "))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}
		fmt.Fprintln(r.out, r.EvalLine(line))
	}
}

// EvalLine substitutes Ans, evaluates one cell, and renders its
// display string followed by any diagnostics. Blank or comment-only
// lines render as an empty string, per the front-end convention.
func (r *REPL) EvalLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	substituted := strings.ReplaceAll(line, "Ans", r.ans)
	out := r.eng.EvalCell(substituted)
	display := out.Value.Display()
	r.ans = display

	var sb strings.Builder
	if s, ok := out.Value.(value.String); ok && s.IsSentinel() {
		sb.WriteString(r.styled(colorRed, display))
	} else {
		sb.WriteString(display)
	}
	for _, d := range out.Diagnostics {
		sb.WriteString("\n")
		sb.WriteString(r.styled(colorRed, "  error: "+d.Error()))
	}
	return sb.String()
}

func (r *REPL) styled(code, text string) string {
	if !r.color {
		return text
	}
	return code + text + colorReset
}

// RenderDiagnostics formats a diagnostic batch with diag.Render: one
// two-space-indented line per diagnostic, uncolored and without the
// "error: " prefix EvalLine adds.
func RenderDiagnostics(diags []diag.Diagnostic) string {
	return diag.Render(diags)
}
