package rewrite

// CoreRules returns the "core" rule subset: commutativity,
// associativity, identity/zero elimination, self-cancellation, double
// negation, and the -1*a/-a conversion. These never expand the e-graph
// materially and are always enabled.
func CoreRules() []*Rule {
	var rules []*Rule

	rules = append(rules,
		mustRule("add-commute", "(+ ?a ?b)", "(+ ?b ?a)"),
		mustRule("mul-commute", "(* ?a ?b)", "(* ?b ?a)"),
	)

	rules = append(rules, bidirectional("add-assoc", "(+ (+ ?a ?b) ?c)", "(+ ?a (+ ?b ?c))")...)
	rules = append(rules, bidirectional("mul-assoc", "(* (* ?a ?b) ?c)", "(* ?a (* ?b ?c))")...)

	rules = append(rules,
		mustRule("add-zero", "(+ ?a 0)", "?a"),
		mustRule("mul-one", "(* ?a 1)", "?a"),
		mustRule("mul-zero", "(* ?a 0)", "0"),
		mustRule("sub-self", "(- ?a ?a)", "0"),
		mustRule("div-self", "(/ ?a ?a)", "1"),
		mustRule("double-neg", "(neg (neg ?a))", "?a"),
	)

	rules = append(rules, bidirectional("neg-as-mul", "(* -1 ?a)", "(neg ?a)")...)

	return rules
}
