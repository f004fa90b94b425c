package extract

import (
	"sort"

	"gradx/internal/egraph"
	"gradx/internal/ir"
)

// DefaultThreshold is the per-class cost threshold used
// as default (3): a class needs at least two references and a minimum
// tree cost above this to become a candidate temporary.
const DefaultThreshold = 3

// selectCandidates returns the e-class ids eligible to become named
// temporaries — referenced at least twice in the best-node tree of all
// roots, with minimum tree cost above threshold — sorted by ascending
// cost (ties broken by id) for deterministic naming.
func selectCandidates(refCounts map[egraph.EClassID]int, costs map[egraph.EClassID]int, threshold int) []egraph.EClassID {
	var out []egraph.EClassID
	for id, count := range refCounts {
		if count >= 2 && costs[id] > threshold {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if costs[out[i]] != costs[out[j]] {
			return costs[out[i]] < costs[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// extractRoot reconstructs id's cheapest expression, replacing any
// reference to a class that became a temporary with a reference to its
// name instead of recursing into it.
func extractRoot(g *egraph.EGraph, costs map[egraph.EClassID]int, tempNames map[egraph.EClassID]string, id egraph.EClassID) ir.Expr {
	id = g.Find(id)
	if name, ok := tempNames[id]; ok {
		return ir.Var(name)
	}
	return buildFromBestNode(g, costs, tempNames, id)
}

// extractTempBody is like extractRoot but for the class that id names:
// it builds id's own definition rather than a reference to it, so the
// temp's body isn't replaced by a reference to itself. Any OTHER
// temporary encountered while recursing into its children — including id
// itself, reachable again only in the cyclic-e-graph case, which is a
// bug — still becomes a variable reference.
func extractTempBody(g *egraph.EGraph, costs map[egraph.EClassID]int, tempNames map[egraph.EClassID]string, id egraph.EClassID) ir.Expr {
	return buildFromBestNode(g, costs, tempNames, g.Find(id))
}

func buildFromBestNode(g *egraph.EGraph, costs map[egraph.EClassID]int, tempNames map[egraph.EClassID]string, id egraph.EClassID) ir.Expr {
	node, _ := bestNode(g, costs, id)
	rec := func(child egraph.EClassID) ir.Expr { return extractRoot(g, costs, tempNames, child) }

	switch n := node.(type) {
	case egraph.NumNode:
		return ir.Num(n.Value)
	case egraph.VarNode:
		return ir.Var(n.Name)
	case egraph.AddNode:
		return ir.Bin(ir.Add, rec(n.L), rec(n.R))
	case egraph.SubNode:
		return ir.Bin(ir.Sub, rec(n.L), rec(n.R))
	case egraph.MulNode:
		return ir.Bin(ir.Mul, rec(n.L), rec(n.R))
	case egraph.DivNode:
		return ir.Bin(ir.Div, rec(n.L), rec(n.R))
	case egraph.PowNode:
		return ir.Bin(ir.Pow, rec(n.L), rec(n.R))
	case egraph.NegNode:
		return ir.Un(ir.Neg, rec(n.X))
	case egraph.InvNode:
		// reciprocal is emitted as 1/x.
		return ir.Bin(ir.Div, ir.Num(1), rec(n.X))
	case egraph.CallNode:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = rec(a)
		}
		return &ir.Call{Name: n.Name, Args: args}
	case egraph.ComponentNode:
		return ir.Comp(rec(n.Object), n.Field)
	default:
		panic("extract: unhandled ENode variant during reconstruction")
	}
}

// refine drops any temp referenced at most once across every other temp
// and root, inlining its body into that single site (or simply dropping
// it if unused) — a guard against spurious bindings.
// Removing one temp can drop another's usage below the threshold, so
// this runs to a fixpoint.
func refine(temps []Temp, roots map[string]ir.Expr) ([]Temp, map[string]ir.Expr) {
	for {
		usage := make(map[string]int, len(temps))
		for _, t := range temps {
			for _, other := range temps {
				if other.Name == t.Name {
					continue
				}
				usage[t.Name] += countVarUses(other.Expr, t.Name)
			}
			for _, r := range roots {
				usage[t.Name] += countVarUses(r, t.Name)
			}
		}

		victim := -1
		for i, t := range temps {
			if usage[t.Name] <= 1 {
				victim = i
				break
			}
		}
		if victim == -1 {
			return temps, roots
		}

		v := temps[victim]
		temps = append(append([]Temp{}, temps[:victim]...), temps[victim+1:]...)
		for i := range temps {
			temps[i].Expr = inlineVar(temps[i].Expr, v.Name, v.Expr)
		}
		for k := range roots {
			roots[k] = inlineVar(roots[k], v.Name, v.Expr)
		}
	}
}

func inlineVar(tree ir.Expr, name string, body ir.Expr) ir.Expr {
	switch x := tree.(type) {
	case *ir.Number:
		return tree
	case *ir.Variable:
		if x.Name == name {
			return body
		}
		return tree
	case *ir.Binary:
		return ir.Bin(x.Op, inlineVar(x.Left, name, body), inlineVar(x.Right, name, body))
	case *ir.Unary:
		return ir.Un(x.Op, inlineVar(x.Operand, name, body))
	case *ir.Call:
		args := make([]ir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = inlineVar(a, name, body)
		}
		return &ir.Call{Name: x.Name, Args: args}
	case *ir.Component:
		return ir.Comp(inlineVar(x.Object, name, body), x.Field)
	default:
		panic("extract: unhandled Expr variant during temp inlining")
	}
}

// applyPostExtractionCSE runs a second CSE pass: after the e-graph
// is gone, look for repeated sub-ASTs across the already-extracted temps
// and roots and promote them too. Each round drains every candidate it
// can find — cheapest first, so a larger pattern containing a smaller one
// still serializes consistently once the smaller one is already a
// reference — then refines usage counts; maxRounds bounds how many times
// this whole drain-then-refine cycle repeats (capped at
// 2 rather than iterated to a fixpoint).
//
// nextIndex names each new temp and is advanced monotonically; it must
// never be derived from len(temps), since refine can delete an
// interior-numbered temp without renumbering the rest, and naming off
// the post-deletion length would mint a name that collides with a
// surviving temp.
func applyPostExtractionCSE(temps []Temp, roots map[string]ir.Expr, threshold, maxRounds int, nextIndex *int) ([]Temp, map[string]ir.Expr) {
	for round := 0; round < maxRounds; round++ {
		progressed := false
		for {
			cheapest, ok := findCheapestCandidate(temps, roots, threshold)
			if !ok {
				break
			}
			name := tempName(*nextIndex)
			*nextIndex++
			for i := range temps {
				temps[i].Expr = substituteExpr(temps[i].Expr, cheapest, ir.Var(name))
			}
			for k := range roots {
				roots[k] = substituteExpr(roots[k], cheapest, ir.Var(name))
			}
			temps = append(temps, Temp{Name: name, Expr: cheapest})
			progressed = true
		}
		temps, roots = refine(temps, roots)
		if !progressed {
			break
		}
	}
	return temps, roots
}

func findCheapestCandidate(temps []Temp, roots map[string]ir.Expr, threshold int) (ir.Expr, bool) {
	trees := make([]ir.Expr, 0, len(temps)+len(roots))
	for _, t := range temps {
		trees = append(trees, t.Expr)
	}
	for _, r := range roots {
		trees = append(trees, r)
	}

	counts := collectSubexprCounts(trees)
	var candidates []*subexprCount
	for _, c := range counts {
		if c.count < 2 {
			continue
		}
		if _, isVar := c.expr.(*ir.Variable); isVar {
			continue // re-wrapping an existing temp/leaf reference gains nothing
		}
		if _, isNum := c.expr.(*ir.Number); isNum {
			continue
		}
		if exprCost(c.expr) <= threshold {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := exprCost(candidates[i].expr), exprCost(candidates[j].expr)
		if ci != cj {
			return ci < cj
		}
		return candidates[i].expr.String() < candidates[j].expr.String()
	})
	return candidates[0].expr, true
}
