package lspserver

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	apperrors "gradx/internal/errors"
	"gradx/internal/pipeline"
	"gradx/internal/surface"
)

// diagnosticsFor parses and compiles source and converts the outcome to
// LSP diagnostics, grounded on kanso/internal/lsp.ConvertParseErrors'
// "one parser.ParseError becomes one protocol.Diagnostic at
// Line-1/Column-1" shape, generalized to also convert this repo's
// non-fatal pipeline.Advisory values (which carry no source position) to
// warning-severity diagnostics anchored at the top of the file.
func (h *Handler) diagnosticsFor(path, source string) []protocol.Diagnostic {
	fn, err := surface.Parse(path, source, h.reg)
	if err != nil {
		return []protocol.Diagnostic{compilerErrorDiagnostic(apperrors.Wrap(err))}
	}

	res, err := pipeline.Compile(fn, h.reg, pipeline.Options{})
	if err != nil {
		return []protocol.Diagnostic{compilerErrorDiagnostic(apperrors.Wrap(err))}
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(res.Advisories))
	for _, a := range res.Advisories {
		diagnostics = append(diagnostics, advisoryDiagnostic(a))
	}
	return diagnostics
}

func compilerErrorDiagnostic(ce *apperrors.CompilerError) protocol.Diagnostic {
	line := ce.Position.Line
	col := ce.Position.Column
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	length := ce.Length
	if length < 1 {
		length = 1
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1 + length)},
		},
		Severity: ptrSeverity(severityFor(ce.Level)),
		Source:   ptrString("gradx"),
		Message:  codePrefixed(ce.Code, ce.Message),
	}
}

func advisoryDiagnostic(a pipeline.Advisory) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityWarning),
		Source:   ptrString("gradx"),
		Message:  codePrefixed(a.Code, a.Message),
	}
}

func codePrefixed(code, message string) string {
	if code == "" {
		return message
	}
	return code + ": " + message
}

func severityFor(level apperrors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case apperrors.Warning:
		return protocol.DiagnosticSeverityWarning
	case apperrors.Note:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
