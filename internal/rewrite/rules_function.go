package rewrite

// FunctionRules returns the "function" rule subset: square-root
// identities, absolute-value idempotence, trig evaluations at zero and
// parity, and exponential/logarithm inverses and laws. Every rule here
// is sound on the reals; rules that only hold under a restricted domain
// (sqrt's multiplicative distribution needs non-negative operands) are
// accepted anyway, since every expression in this language is assumed
// real-valued.
func FunctionRules() []*Rule {
	var rules []*Rule

	rules = append(rules,
		mustRule("sqrt-square", "(* (sqrt ?a) (sqrt ?a))", "?a"),
	)
	rules = append(rules, bidirectional("sqrt-distribute-mul", "(sqrt (* ?a ?b))", "(* (sqrt ?a) (sqrt ?b))")...)

	rules = append(rules,
		mustRule("abs-idempotent", "(abs (abs ?a))", "(abs ?a)"),
	)

	rules = append(rules,
		mustRule("sin-zero", "(sin 0)", "0"),
		mustRule("cos-zero", "(cos 0)", "1"),
		mustRule("sin-odd", "(sin (neg ?a))", "(neg (sin ?a))"),
		mustRule("cos-even", "(cos (neg ?a))", "(cos ?a)"),
	)

	rules = append(rules,
		mustRule("exp-log-inverse", "(exp (log ?a))", "?a"),
		mustRule("log-exp-inverse", "(log (exp ?a))", "?a"),
	)
	rules = append(rules, bidirectional("exp-product-law", "(exp (+ ?a ?b))", "(* (exp ?a) (exp ?b))")...)
	rules = append(rules, bidirectional("log-product-law", "(log (* ?a ?b))", "(+ (log ?a) (log ?b))")...)
	rules = append(rules,
		mustRule("log-power-law", "(log (^ ?a ?b))", "(* ?b (log ?a))"),
	)

	return rules
}
