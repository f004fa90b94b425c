package extract

import (
	"sort"
	"strconv"

	"gradx/internal/egraph"
	"gradx/internal/ir"
)

// Temp is one named temporary binding in the extraction result's
// dependency-ordered list.
type Temp struct {
	Name string
	Expr ir.Expr
}

// Result is the extraction-result structure: an
// ordered list of temp bindings, one expression per named root, and the
// total AST cost across both.
type Result struct {
	Temps     []Temp
	Roots     map[string]ir.Expr
	TotalCost int
}

// Extract runs the full extraction pipeline over a saturated
// e-graph and a named set of root classes (conventionally "value" plus
// one root per differentiable component): minimum-cost computation,
// best-node extraction, CSE candidate selection and temp promotion,
// refinement, post-extraction CSE, and topological ordering.
func Extract(g *egraph.EGraph, roots map[string]egraph.EClassID, threshold int) Result {
	names := make([]string, 0, len(roots))
	for n := range roots {
		names = append(names, n)
	}
	sort.Strings(names)

	rootIDs := make([]egraph.EClassID, len(names))
	for i, n := range names {
		rootIDs[i] = g.Find(roots[n])
	}

	costs := computeCosts(g)
	refCounts := countReferences(g, costs, rootIDs)
	candidates := selectCandidates(refCounts, costs, threshold)

	tempNames := make(map[egraph.EClassID]string, len(candidates))
	for i, id := range candidates {
		tempNames[id] = tempName(i)
	}

	temps := make([]Temp, len(candidates))
	for i, id := range candidates {
		temps[i] = Temp{Name: tempNames[id], Expr: extractTempBody(g, costs, tempNames, id)}
	}

	rootExprs := make(map[string]ir.Expr, len(names))
	for i, n := range names {
		rootExprs[n] = extractRoot(g, costs, tempNames, rootIDs[i])
	}

	temps, rootExprs = refine(temps, rootExprs)
	nextIndex := len(candidates)
	temps, rootExprs = applyPostExtractionCSE(temps, rootExprs, threshold, 2, &nextIndex)
	temps = topoSortTemps(temps)

	return Result{
		Temps:     temps,
		Roots:     rootExprs,
		TotalCost: totalCost(temps, rootExprs),
	}
}

func tempName(n int) string {
	return "_tmp" + strconv.Itoa(n)
}

func totalCost(temps []Temp, roots map[string]ir.Expr) int {
	total := 0
	for _, t := range temps {
		total += exprCost(t.Expr)
	}
	for _, r := range roots {
		total += exprCost(r)
	}
	return total
}
