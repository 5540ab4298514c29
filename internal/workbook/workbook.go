// Package workbook loads a text file of calculator cells and
// re-evaluates it top-to-bottom against a fresh Engine: one line, one
// cell, blank/comment-only lines preserved with an empty output.
package workbook

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"quanta/internal/diag"
	"quanta/internal/engine"
)

// Line is one evaluated cell: its original text and the rendered
// display string (empty for a blank or comment-only line).
type Line struct {
	Text        string
	Display     string
	Diagnostics []diag.Diagnostic
}

// Workbook is a file's path and size plus the running Engine its cells
// are evaluated against. The file is read once per run; there is no
// cache or search path, the one path comes straight from the command
// line.
type Workbook struct {
	Path string
	Size int64
	eng  *engine.Engine
	ans  string
}

// Load stats path to record its size and prepares a Workbook ready to
// evaluate. It does not read the file or evaluate any cells yet.
func Load(path string) (*Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	return &Workbook{Path: path, Size: info.Size(), eng: engine.New()}, nil
}

// HumanSize renders the loaded file's size the way a front-end would
// report it on load, e.g. "1.2 kB".
func (w *Workbook) HumanSize() string { return humanize.Bytes(uint64(w.Size)) }

// Run reads the file and evaluates every line in order, substituting
// the previous line's displayed result for the literal substring
// "Ans" before each cell is parsed. It returns one Line per line of
// the file, in order.
func (w *Workbook) Run() ([]Line, error) {
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	rawLines := strings.Split(string(data), "\n")
	if len(rawLines) > 0 && rawLines[len(rawLines)-1] == "" {
		rawLines = rawLines[:len(rawLines)-1]
	}

	out := make([]Line, 0, len(rawLines))
	for _, text := range rawLines {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			out = append(out, Line{Text: text})
			continue
		}
		substituted := strings.ReplaceAll(text, "Ans", w.ans)
		result := w.eng.EvalCell(substituted)
		display := result.Value.Display()
		w.ans = display
		out = append(out, Line{Text: text, Display: display, Diagnostics: result.Diagnostics})
	}
	return out, nil
}

// LogHeader renders a one-line banner for an optional session
// transcript, timestamped with strftime's "%Y-%m-%d %H:%M:%S" layout
// rather than Go's reference-time layout.
func (w *Workbook) LogHeader(at time.Time) string {
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", at)
	return fmt.Sprintf("# workbook %s (%s) loaded %s", w.Path, w.HumanSize(), ts)
}
