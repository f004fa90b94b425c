package errors

// Error codes for the gradient compiler.
//
// E1xxx: configuration errors — fatal, reported as CompilerError
//   E1001-E1099: differentiation configuration errors
//   E1100-E1199: rewrite-rule configuration errors
//   E1200-E1299: surface syntax errors
// W1xxx: non-fatal advisories — never block compilation
//   W1800-W1899: discontinuity advisories
//   W1900-W1999: capacity-ceiling warnings

const (
	// ErrorMissingGradient: a Call references a built-in with no
	// registered gradient rule (diff.MissingGradientError).
	ErrorMissingGradient = "E1001"

	// ErrorMalformedPattern: a rewrite rule's lhs/rhs failed to parse as
	// an s-expression pattern (pattern.ParseError).
	ErrorMalformedPattern = "E1101"

	// ErrorUnboundPatternVariable: a rewrite rule's rhs references a
	// pattern variable absent from its lhs (rewrite.UnboundVariableError).
	ErrorUnboundPatternVariable = "E1102"

	// ErrorSurfaceSyntax: the surface parser could not parse a source file.
	ErrorSurfaceSyntax = "E1200"

	// WarningDiscontinuity: a built-in used in the compiled expression is
	// non-smooth or has a branch cut (builtins.Discontinuity).
	WarningDiscontinuity = "W1800"

	// WarningCapacityCeiling: saturation hit a configured bound before
	// reaching its natural fixpoint (rewrite.Stats.Saturated == false).
	WarningCapacityCeiling = "W1900"
)

// IsWarning reports whether code names a non-fatal advisory rather than a
// fatal configuration error.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// Describe returns a human-readable description of a known error code.
func Describe(code string) string {
	switch code {
	case ErrorMissingGradient:
		return "built-in function has no registered gradient rule"
	case ErrorMalformedPattern:
		return "rewrite rule pattern is not valid s-expression syntax"
	case ErrorUnboundPatternVariable:
		return "rewrite rule right-hand side references an unbound pattern variable"
	case ErrorSurfaceSyntax:
		return "source file could not be parsed"
	case WarningDiscontinuity:
		return "expression uses a non-smooth or branch-cut built-in"
	case WarningCapacityCeiling:
		return "optimization stopped at a capacity ceiling before reaching a fixpoint"
	default:
		return "unknown error code"
	}
}
