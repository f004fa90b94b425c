package lspserver

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDiagnosticsForValidSourceReportsNoFatalDiagnostics(t *testing.T) {
	h := NewHandler()
	diagnostics := h.diagnosticsFor("f.gx", "fn f(diff x: scalar, diff y: scalar) -> x * x + y")
	for _, d := range diagnostics {
		if *d.Severity == protocol.DiagnosticSeverityError {
			t.Fatalf("unexpected error diagnostic for valid source: %+v", d)
		}
	}
}

func TestDiagnosticsForSyntaxErrorProducesOneErrorDiagnostic(t *testing.T) {
	h := NewHandler()
	diagnostics := h.diagnosticsFor("bad.gx", "fn f(diff x: scalar) -> x +")
	if len(diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", len(diagnostics))
	}
	if !strings.Contains(diagnostics[0].Message, "E1200") {
		t.Fatalf("expected the surface-syntax error code in the message, got %q", diagnostics[0].Message)
	}
}

func TestDiagnosticsForDiscontinuousBuiltinProducesWarning(t *testing.T) {
	h := NewHandler()
	diagnostics := h.diagnosticsFor("g.gx", "fn g(diff x: scalar, diff y: scalar) -> max(x, y)")
	found := false
	for _, d := range diagnostics {
		if strings.Contains(d.Message, "W1800") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a W1800 discontinuity advisory, got %+v", diagnostics)
	}
}

func TestUriToPathStripsFileScheme(t *testing.T) {
	path, err := uriToPath("file:///home/user/f.gx")
	if err != nil {
		t.Fatalf("uriToPath returned error: %v", err)
	}
	if !strings.HasSuffix(path, "/home/user/f.gx") {
		t.Fatalf("got %q", path)
	}
}
