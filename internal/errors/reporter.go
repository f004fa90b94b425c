// Package errors implements a Rust-style CompilerError with caret-style
// source context, rendered by an ErrorReporter, in the manner of kanso's
// internal/errors package. CompilerError carries fatal errors; non-fatal
// advisories travel as pipeline.Advisory values that use the warning
// codes defined in this package.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel is the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// Position locates a diagnostic in source text. Line and column are
// 1-indexed; a zero Position means "no source location" (the case for
// configuration errors raised deep in the pipeline, past the surface
// parser, which have no source span to point at).
type Position struct {
	Line   int
	Column int
}

// Suggestion is a proposed fix attached to a CompilerError.
type Suggestion struct {
	Message     string
	Replacement string
}

// CompilerError is a structured diagnostic: a code, a message, an optional
// source position, and optional suggestions/notes/help text.
type CompilerError struct {
	Level       ErrorLevel
	Code        string
	Message     string
	Position    Position
	Length      int
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

func (e *CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// ErrorReporter renders CompilerErrors against a named source file,
// adding caret-style context lines when the error carries a Position.
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter returns a reporter for filename/source. source may be
// empty — errors raised past the surface parser (differentiation,
// rewrite-rule setup) have no source text to show, and FormatError
// degrades gracefully to a bare header line in that case.
func NewErrorReporter(filename, source string) *ErrorReporter {
	var lines []string
	if source != "" {
		lines = strings.Split(source, "\n")
	}
	return &ErrorReporter{filename: filename, lines: lines}
}

// FormatError renders err as multi-line, colorized text.
func (er *ErrorReporter) FormatError(err *CompilerError) string {
	var b strings.Builder

	levelColor := er.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", levelColor(string(err.Level)), err.Message)
	}

	if err.Position.Line > 0 && err.Position.Line <= len(er.lines) {
		width := lineNumberWidth(err.Position.Line)
		indent := strings.Repeat(" ", width)

		fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column)
		fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

		lineContent := er.lines[err.Position.Line-1]
		fmt.Fprintf(&b, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), lineContent)

		marker := er.marker(err.Position.Column, err.Length, err.Level)
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), marker)
	}

	for _, s := range err.Suggestions {
		help := color.New(color.FgCyan).SprintFunc()
		fmt.Fprintf(&b, "%s %s: %s\n", help("help"), help("try"), s.Message)
		if s.Replacement != "" {
			fmt.Fprintf(&b, "  %s\n", help(s.Replacement))
		}
	}
	for _, n := range err.Notes {
		note := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&b, "%s %s\n", note("note:"), n)
	}
	if err.HelpText != "" {
		help := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&b, "%s %s\n", help("help:"), err.HelpText)
	}

	return b.String()
}

func (er *ErrorReporter) levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (er *ErrorReporter) marker(column, length int, level ErrorLevel) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", maxInt(0, column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
