package errors

import (
	"strings"
	"testing"

	"gradx/internal/builtins"
	"gradx/internal/diff"
	"gradx/internal/pattern"
	"gradx/internal/surface"
)

func TestWrapMissingGradientError(t *testing.T) {
	ce := Wrap(&diff.MissingGradientError{Name: "frobnicate"})
	if ce.Code != ErrorMissingGradient {
		t.Fatalf("got code %s want %s", ce.Code, ErrorMissingGradient)
	}
	if !strings.Contains(ce.Message, "frobnicate") {
		t.Fatalf("message missing built-in name: %s", ce.Message)
	}
}

func TestWrapPatternParseError(t *testing.T) {
	_, err := pattern.Parse("(+ ?a")
	if err == nil {
		t.Fatal("expected parse error for unbalanced pattern")
	}
	ce := Wrap(err)
	if ce.Code != ErrorMalformedPattern {
		t.Fatalf("got code %s want %s", ce.Code, ErrorMalformedPattern)
	}
}

func TestWrapSurfaceParseError(t *testing.T) {
	reg := builtins.NewRegistry()
	_, err := surface.Parse("bad.gx", "fn f(diff x: scalar) -> x +", reg)
	if err == nil {
		t.Fatal("expected a surface parse error")
	}
	ce := Wrap(err)
	if ce.Code != ErrorSurfaceSyntax {
		t.Fatalf("got code %s want %s", ce.Code, ErrorSurfaceSyntax)
	}
	if ce.Position.Line != 1 {
		t.Fatalf("expected position to survive Wrap, got %+v", ce.Position)
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatal("expected Wrap(nil) to return nil")
	}
}

func TestFormatErrorWithoutPositionDoesNotPanic(t *testing.T) {
	reporter := NewErrorReporter("<generated>", "")
	out := reporter.FormatError(&CompilerError{
		Level:   Error,
		Code:    ErrorMissingGradient,
		Message: "no gradient rule for \"foo\"",
		HelpText: "register a GradientRule for \"foo\"",
	})
	if !strings.Contains(out, ErrorMissingGradient) {
		t.Fatalf("formatted output missing code: %s", out)
	}
}

func TestFormatErrorWithPositionShowsLocation(t *testing.T) {
	source := "fn f(x) -> x + 1\n"
	reporter := NewErrorReporter("f.gx", source)
	out := reporter.FormatError(&CompilerError{
		Level:    Error,
		Code:     ErrorSurfaceSyntax,
		Message:  "unexpected token",
		Position: Position{Line: 1, Column: 10},
		Length:   1,
	})
	if !strings.Contains(out, "f.gx:1:10") {
		t.Fatalf("formatted output missing location: %s", out)
	}
}

func TestIsWarning(t *testing.T) {
	if !IsWarning(WarningDiscontinuity) {
		t.Fatal("expected discontinuity code to be a warning")
	}
	if IsWarning(ErrorMissingGradient) {
		t.Fatal("did not expect missing-gradient code to be a warning")
	}
}
