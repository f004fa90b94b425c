package rewrite

import (
	"gradx/internal/egraph"
	"gradx/internal/pattern"
)

// Stats reports the saturation run's statistics: iterations run, total
// matches found, total merges applied, whether a fixpoint was reached,
// and the final live class count.
type Stats struct {
	Iterations      int
	Matches         int
	Merges          int
	Saturated       bool
	FinalClassCount int
}

// DefaultMaxClasses is the default class-count ceiling (10,000),
// bounding memory during saturation.
const DefaultMaxClasses = 10000

// DefaultMaxIterations bounds an unphased saturation run; phased runs
// apply this per phase instead.
const DefaultMaxIterations = 64

// Saturator drives one-pass saturation and the phased core/algebra/
// function variant over a single e-graph instance. A Saturator and its
// e-graph are not safe for concurrent use.
type Saturator struct {
	Graph *egraph.EGraph
}

// NewSaturator wraps g for saturation.
func NewSaturator(g *egraph.EGraph) *Saturator {
	return &Saturator{Graph: g}
}

type foundMatch struct {
	rule  *Rule
	class egraph.EClassID
	subst pattern.Substitution
}

// step runs one saturation pass over rules: every e-class is matched
// against every rule (a read-only phase over the e-graph as it stood at
// the start of the pass), then every match is instantiated and merged,
// then the graph is rebuilt.
func (s *Saturator) step(rules []*Rule) (matches int, merges int) {
	var found []foundMatch
	for _, classID := range s.Graph.GetClassIds() {
		for _, r := range rules {
			for _, sub := range pattern.Match(s.Graph, r.LHS, classID, pattern.Substitution{}) {
				found = append(found, foundMatch{rule: r, class: classID, subst: sub})
			}
		}
	}

	for _, m := range found {
		rhsClass := pattern.Instantiate(s.Graph, m.rule.RHS, m.subst)
		if s.Graph.Find(m.class) != s.Graph.Find(rhsClass) {
			s.Graph.Merge(m.class, rhsClass)
			merges++
		}
	}
	s.Graph.Rebuild()
	return len(found), merges
}

// Saturate runs rules to a fixpoint: a pass that applies no merges. It
// stops early, with Stats.Saturated false, if the iteration bound or the
// class-count ceiling is hit — a non-fatal capacity limit, not an error.
func (s *Saturator) Saturate(rules []*Rule, maxIterations, maxClasses int) Stats {
	var stats Stats
	for stats.Iterations < maxIterations {
		if s.Graph.Size() > maxClasses {
			stats.FinalClassCount = s.Graph.Size()
			return stats
		}
		matches, merges := s.step(rules)
		stats.Iterations++
		stats.Matches += matches
		stats.Merges += merges
		if merges == 0 {
			stats.Saturated = true
			break
		}
	}
	stats.FinalClassCount = s.Graph.Size()
	return stats
}

// Phase is one named rule-subset stage of the phased driver, grounded on
// the Name()/Apply()/Description() optimization-pass shape used for the
// gas-optimization pipeline this repo's teacher implements — generalized
// here to a pattern-rewrite phase over an e-graph instead of a pass over
// a basic-block program.
type Phase struct {
	PhaseName   string
	Rules       []*Rule
	Description string
}

func (p Phase) Name() string { return p.PhaseName }

// DefaultPhases returns the phased driver's standard core -> algebra ->
// function sequence: running each rule subset to local saturation in
// turn prevents the algebra phase's expensive distribution
// rules from blowing up the graph before the core phase's commutative and
// identity forms have settled.
func DefaultPhases() []Phase {
	return []Phase{
		{PhaseName: "core", Rules: CoreRules(), Description: "commutativity, associativity, identities, self-cancellation"},
		{PhaseName: "algebra", Rules: AlgebraRules(), Description: "distribution, negation propagation, division/inverse conversions"},
		{PhaseName: "function", Rules: FunctionRules(), Description: "sqrt/abs/trig/exp-log identities"},
	}
}

// RunPhased runs each phase to local saturation in sequence, accumulating
// Stats across all of them. It stops early (Saturated=false) at the first
// phase that does not reach its fixpoint, whether it hit the class-count
// ceiling or the iteration bound; Saturated is true only when every phase
// reached its own fixpoint.
func (s *Saturator) RunPhased(phases []Phase, maxIterationsPerPhase, maxClasses int) Stats {
	var total Stats
	for _, phase := range phases {
		phaseStats := s.Saturate(phase.Rules, maxIterationsPerPhase, maxClasses)
		total.Iterations += phaseStats.Iterations
		total.Matches += phaseStats.Matches
		total.Merges += phaseStats.Merges
		total.FinalClassCount = phaseStats.FinalClassCount
		if !phaseStats.Saturated {
			total.Saturated = false
			return total
		}
	}
	total.Saturated = true
	return total
}
