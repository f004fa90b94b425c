package errors

import (
	"fmt"

	"gradx/internal/diff"
	"gradx/internal/pattern"
	"gradx/internal/rewrite"
	"gradx/internal/surface"
)

// Wrap converts one of this repo's fatal configuration errors — unknown
// built-in / missing gradient rule, malformed pattern, surface syntax
// error, or unbound rhs pattern variable — into a CompilerError with the
// matching code. Any other error becomes an Error-level CompilerError
// with no code and the error's message, so callers can report uniformly
// without a type switch of their own. A nil err returns nil.
func Wrap(err error) *CompilerError {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *diff.MissingGradientError:
		return &CompilerError{
			Level:   Error,
			Code:    ErrorMissingGradient,
			Message: e.Error(),
			HelpText: fmt.Sprintf(
				"register a GradientRule for %q in internal/builtins, or remove the call", e.Name),
		}
	case *pattern.ParseError:
		return &CompilerError{
			Level:   Error,
			Code:    ErrorMalformedPattern,
			Message: e.Error(),
		}
	case *surface.ParseError:
		return &CompilerError{
			Level:    Error,
			Code:     ErrorSurfaceSyntax,
			Message:  e.Message,
			Position: Position{Line: e.Position.Line, Column: e.Position.Column},
		}
	case *rewrite.UnboundVariableError:
		return &CompilerError{
			Level:   Error,
			Code:    ErrorUnboundPatternVariable,
			Message: e.Error(),
			Notes:   []string{fmt.Sprintf("rule %q: every rhs pattern variable must also appear in its lhs", e.Rule)},
		}
	default:
		return &CompilerError{Level: Error, Message: err.Error()}
	}
}
