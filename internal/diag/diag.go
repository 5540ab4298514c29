// Package diag defines the Diagnostic record that accompanies every
// stage of the evaluation pipeline. Diagnostics are informational: the
// pipeline never aborts because of one.
package diag

import (
	"fmt"

	"github.com/kr/text"
)

// Kind classifies a Diagnostic.
type Kind string

const (
	Parse         Kind = "Parse"
	UnknownSymbol Kind = "UnknownSymbol"
	Type          Kind = "Type"
	UnitMismatch  Kind = "UnitMismatch"
	Domain        Kind = "Domain"
	Overflow      Kind = "Overflow"
	Circular      Kind = "Circular"
	Internal      Kind = "Internal"
)

// Span is a byte-offset range [Start, End) into a cell's source text.
type Span struct {
	Start int
	End   int
}

// Diagnostic is one informational note produced while lexing, parsing,
// lowering, or evaluating a cell. Defines and Uses are filled in by the
// engine from the cell's binder pass, not by the stage that raised the
// diagnostic itself — they say which symbols the whole cell touched,
// for a front-end that wants to show that alongside the note.
type Diagnostic struct {
	Message string
	Span    *Span
	Kind    Kind
	Defines []string
	Uses    []string
}

// NewParse builds a Parse-kind diagnostic, optionally carrying a span.
func NewParse(message string, span *Span) Diagnostic {
	return Diagnostic{Message: message, Span: span, Kind: Parse}
}

// New builds a diagnostic of the given kind with no span.
func New(kind Kind, message string) Diagnostic {
	return Diagnostic{Message: message, Kind: kind}
}

// Error implements the error interface so a Diagnostic can be wrapped
// or logged like any other Go error.
func (d Diagnostic) Error() string {
	if d.Span != nil {
		return fmt.Sprintf("%s: %s [%d:%d]", d.Kind, d.Message, d.Span.Start, d.Span.End)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Render formats a batch of diagnostics for display in a CLI, each on
// its own indented line.
func Render(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	var body string
	for _, d := range diags {
		body += d.Error() + "\n"
	}
	return text.Indent(body, "  ")
}
