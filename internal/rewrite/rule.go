// Package rewrite implements the rule library and saturation driver:
// rules match against e-classes via internal/pattern and saturate the
// e-graph until a fixpoint, an iteration bound, or a class-count
// ceiling is reached.
package rewrite

import (
	"fmt"

	"gradx/internal/pattern"
)

// Rule is a named (lhs, rhs) pattern pair. Rules are directional; a
// bidirectional algebraic identity is represented as two Rules (see
// bidirectional below).
type Rule struct {
	Name string
	LHS  pattern.Pattern
	RHS  pattern.Pattern
}

// UnboundVariableError is a fatal setup error: a rule's rhs refers to a
// pattern variable that never appears in its lhs, so it could never be
// bound by a match.
type UnboundVariableError struct {
	Rule     string
	Variable string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("rewrite: rule %q: rhs variable ?%s does not appear in lhs", e.Rule, e.Variable)
}

// NewRule parses lhs and rhs and checks the rhs-variables-subset-of-lhs
// invariant before returning.
func NewRule(name, lhs, rhs string) (*Rule, error) {
	l, err := pattern.Parse(lhs)
	if err != nil {
		return nil, fmt.Errorf("rewrite: rule %q: lhs: %w", name, err)
	}
	r, err := pattern.Parse(rhs)
	if err != nil {
		return nil, fmt.Errorf("rewrite: rule %q: rhs: %w", name, err)
	}
	lhsVars := pattern.Variables(l)
	for v := range pattern.Variables(r) {
		if !lhsVars[v] {
			return nil, &UnboundVariableError{Rule: name, Variable: v}
		}
	}
	return &Rule{Name: name, LHS: l, RHS: r}, nil
}

// mustRule builds a rule from the hand-written library tables below; a
// parse or unbound-variable failure there is a bug in this file, not a
// runtime condition, so it panics rather than threading an error through
// every table entry.
func mustRule(name, lhs, rhs string) *Rule {
	r, err := NewRule(name, lhs, rhs)
	if err != nil {
		panic(err)
	}
	return r
}

// bidirectional expands a named algebraic identity into its forward and
// reverse Rules.
func bidirectional(name, a, b string) []*Rule {
	return []*Rule{
		mustRule(name+"-fwd", a, b),
		mustRule(name+"-rev", b, a),
	}
}
