// Package pipeline wires the gradient-compilation stages into the single
// entry point Compile names: inline, differentiate, locally simplify,
// insert into an e-graph, saturate, and extract. It is grounded on
// kanso's internal/semantic.Analyzer "construct once, Analyze(), collect
// results" orchestration shape, generalized from a type-checking pass
// over a contract AST to a compile pass over one differentiable function.
package pipeline

import (
	"sort"

	"github.com/segmentio/ksuid"

	"gradx/internal/builtins"
	"gradx/internal/diff"
	"gradx/internal/egraph"
	apperrors "gradx/internal/errors"
	"gradx/internal/extract"
	"gradx/internal/inline"
	"gradx/internal/ir"
	"gradx/internal/rewrite"
	"gradx/internal/simplify"
)

const valueRootName = "value"

// Advisory is a non-fatal note surfaced alongside a successful compile:
// either a built-in discontinuity or a saturation capacity ceiling,
// neither of which ever blocks a compile.
type Advisory struct {
	Code    string
	Message string
}

// CompileResult is everything one pipeline.Compile call produces: the
// extracted value and gradient expressions, their shared temporaries, the
// saturation statistics, and a run id for correlating diagnostics across
// logs and generated output.
type CompileResult struct {
	RunID      string
	Value      ir.Expr
	Gradients  map[ir.ComponentRef]ir.Expr
	Temps      []extract.Temp
	Stats      rewrite.Stats
	TotalCost  int
	Advisories []Advisory
}

// Options configures a Compile call; the zero value is the default
// configuration (a 10,000-class ceiling, a CSE threshold of 3).
type Options struct {
	MaxClasses          int
	MaxIterationsPerRun int
	CSEThreshold        int
}

func (o Options) withDefaults() Options {
	if o.MaxClasses <= 0 {
		o.MaxClasses = rewrite.DefaultMaxClasses
	}
	if o.MaxIterationsPerRun <= 0 {
		o.MaxIterationsPerRun = rewrite.DefaultMaxIterations
	}
	if o.CSEThreshold <= 0 {
		o.CSEThreshold = extract.DefaultThreshold
	}
	return o
}

// Compile runs fn through the full gradient-compilation pipeline: inline,
// differentiate every differentiable component, locally simplify,
// saturate an e-graph with the phased rule driver, and extract
// cost-minimal, CSE'd expressions for the value and every gradient
// component.
//
// Every error Compile returns comes from differentiation: a fatal
// configuration error (diff.MissingGradientError, surfaced through
// internal/errors.Wrap by callers that need a CompilerError) or a plain
// error for an expression the differentiator cannot handle. Capacity
// limits are never errors — they surface as Advisories and as
// Stats.Saturated == false.
func Compile(fn *ir.Function, reg *builtins.Registry, opts Options) (*CompileResult, error) {
	opts = opts.withDefaults()

	inlined := inline.Inline(fn, reg)
	targets := fn.DifferentiableComponents()

	rawGradients, err := diff.Gradient(inlined, targets, reg)
	if err != nil {
		return nil, err
	}

	value := simplify.Simplify(inlined)
	simplifiedGradients := make(map[ir.ComponentRef]ir.Expr, len(rawGradients))
	for ref, expr := range rawGradients {
		simplifiedGradients[ref] = simplify.Simplify(expr)
	}

	g := egraph.NewGraph()
	roots := map[string]egraph.EClassID{valueRootName: g.Insert(value)}
	refByRootName := make(map[string]ir.ComponentRef, len(targets))
	for _, ref := range targets {
		name := ref.VarName()
		roots[name] = g.Insert(simplifiedGradients[ref])
		refByRootName[name] = ref
	}

	saturator := rewrite.NewSaturator(g)
	stats := saturator.RunPhased(rewrite.DefaultPhases(), opts.MaxIterationsPerRun, opts.MaxClasses)

	result := extract.Extract(g, roots, opts.CSEThreshold)

	gradients := make(map[ir.ComponentRef]ir.Expr, len(refByRootName))
	for name, ref := range refByRootName {
		gradients[ref] = result.Roots[name]
	}

	return &CompileResult{
		RunID:      ksuid.New().String(),
		Value:      result.Roots[valueRootName],
		Gradients:  gradients,
		Temps:      result.Temps,
		Stats:      stats,
		TotalCost:  result.TotalCost,
		Advisories: collectAdvisories(result, stats, reg),
	}, nil
}

// collectAdvisories scans the extracted temps and roots for calls to
// built-ins with a registered discontinuity, plus a capacity-ceiling
// advisory if saturation didn't reach its natural fixpoint.
func collectAdvisories(result extract.Result, stats rewrite.Stats, reg *builtins.Registry) []Advisory {
	var out []Advisory

	seen := make(map[string]bool)
	var walk func(e ir.Expr)
	walk = func(e ir.Expr) {
		ir.Walk(e, func(n ir.Expr) {
			call, ok := n.(*ir.Call)
			if !ok {
				return
			}
			entry, ok := reg.Lookup(call.Name)
			if !ok || entry.Discontinuity == nil || seen[call.Name] {
				return
			}
			seen[call.Name] = true
			out = append(out, Advisory{
				Code:    apperrors.WarningDiscontinuity,
				Message: call.Name + ": " + entry.Discontinuity.Description,
			})
		})
	}
	for _, t := range result.Temps {
		walk(t.Expr)
	}

	rootNames := make([]string, 0, len(result.Roots))
	for n := range result.Roots {
		rootNames = append(rootNames, n)
	}
	sort.Strings(rootNames)
	for _, n := range rootNames {
		walk(result.Roots[n])
	}

	if !stats.Saturated {
		out = append(out, Advisory{
			Code:    apperrors.WarningCapacityCeiling,
			Message: "saturation stopped before reaching a fixpoint (class-count ceiling or iteration bound)",
		})
	}

	return out
}
