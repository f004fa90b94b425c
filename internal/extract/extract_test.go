package extract

import (
	"testing"

	"gradx/internal/egraph"
	"gradx/internal/ir"
)

func TestExtractPlainTreeWithNoCandidates(t *testing.T) {
	g := egraph.NewGraph()
	x := g.Add(egraph.VarNode{Name: "x"})
	y := g.Add(egraph.VarNode{Name: "y"})
	sum := g.Add(egraph.AddNode{L: x, R: y})

	res := Extract(g, map[string]egraph.EClassID{"value": sum}, DefaultThreshold)

	if len(res.Temps) != 0 {
		t.Fatalf("expected no temps for a small unshared tree, got %v", res.Temps)
	}
	want := ir.Bin(ir.Add, ir.Var("x"), ir.Var("y"))
	if !ir.Equal(res.Roots["value"], want) {
		t.Fatalf("root mismatch: got %s want %s", res.Roots["value"], want)
	}
}

// buildShared constructs an e-graph holding two roots that both reference
// an expensive shared subexpression sin(x)^3 at least twice overall, so the
// class is eligible for CSE promotion (ref count >= 2, cost > threshold).
func buildShared(g *egraph.EGraph) (shared, root1, root2 egraph.EClassID) {
	x := g.Add(egraph.VarNode{Name: "x"})
	sinx := g.Add(egraph.CallNode{Name: "sin", Args: []egraph.EClassID{x}})
	three := g.Add(egraph.NumNode{Value: 3})
	shared = g.Add(egraph.PowNode{L: sinx, R: three}) // cost: 4 + (3+1) + 1 = 9 > 3

	y := g.Add(egraph.VarNode{Name: "y"})
	root1 = g.Add(egraph.AddNode{L: shared, R: y})
	root2 = g.Add(egraph.MulNode{L: shared, R: y})
	return shared, root1, root2
}

func TestExtractPromotesSharedExpensiveSubexpression(t *testing.T) {
	g := egraph.NewGraph()
	_, root1, root2 := buildShared(g)

	res := Extract(g, map[string]egraph.EClassID{"a": root1, "b": root2}, DefaultThreshold)

	if len(res.Temps) != 1 {
		t.Fatalf("expected exactly one promoted temp, got %d: %v", len(res.Temps), res.Temps)
	}
	temp := res.Temps[0]
	wantBody := ir.Bin(ir.Pow, ir.Fn("sin", ir.Var("x")), ir.Num(3))
	if !ir.Equal(temp.Expr, wantBody) {
		t.Fatalf("temp body mismatch: got %s want %s", temp.Expr, wantBody)
	}

	for _, name := range []string{"a", "b"} {
		if ir.FreeVariables(res.Roots[name])[temp.Name] != true {
			t.Fatalf("root %q does not reference temp %s: %s", name, temp.Name, res.Roots[name])
		}
	}
}

func TestRefineDropsSinglyUsedTemp(t *testing.T) {
	temps := []Temp{
		{Name: "_tmp0", Expr: ir.Bin(ir.Pow, ir.Var("x"), ir.Num(3))},
	}
	roots := map[string]ir.Expr{
		"value": ir.Var("_tmp0"),
	}

	gotTemps, gotRoots := refine(temps, roots)

	if len(gotTemps) != 0 {
		t.Fatalf("expected singly-used temp to be inlined away, got %v", gotTemps)
	}
	want := ir.Bin(ir.Pow, ir.Var("x"), ir.Num(3))
	if !ir.Equal(gotRoots["value"], want) {
		t.Fatalf("root after refine: got %s want %s", gotRoots["value"], want)
	}
}

func TestPostExtractionCSEPromotesRepeatedSyntacticSubexpression(t *testing.T) {
	shared := ir.Bin(ir.Pow, ir.Fn("sin", ir.Var("x")), ir.Num(3))
	roots := map[string]ir.Expr{
		"a": ir.Bin(ir.Add, shared, ir.Var("y")),
		"b": ir.Bin(ir.Mul, shared, ir.Var("z")),
	}

	nextIndex := 0
	temps, roots := applyPostExtractionCSE(nil, roots, DefaultThreshold, 2, &nextIndex)

	if len(temps) != 1 {
		t.Fatalf("expected one promoted temp from post-extraction CSE, got %d: %v", len(temps), temps)
	}
	if !ir.Equal(temps[0].Expr, shared) {
		t.Fatalf("promoted temp body mismatch: got %s want %s", temps[0].Expr, shared)
	}
	for _, name := range []string{"a", "b"} {
		if ir.FreeVariables(roots[name])[temps[0].Name] != true {
			t.Fatalf("root %q missing reference to promoted temp: %s", name, roots[name])
		}
	}
}

func TestTopoSortOrdersDependentTempsBeforeUse(t *testing.T) {
	// _tmp1 depends on _tmp0; constructed in reverse order to check sorting.
	temps := []Temp{
		{Name: "_tmp1", Expr: ir.Bin(ir.Add, ir.Var("_tmp0"), ir.Num(1))},
		{Name: "_tmp0", Expr: ir.Bin(ir.Mul, ir.Var("x"), ir.Num(2))},
	}

	sorted := topoSortTemps(temps)

	pos := make(map[string]int, len(sorted))
	for i, t := range sorted {
		pos[t.Name] = i
	}
	if pos["_tmp0"] >= pos["_tmp1"] {
		t.Fatalf("expected _tmp0 before _tmp1, got order %v", sorted)
	}
}

func TestExtractIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	build := func() (*egraph.EGraph, egraph.EClassID, egraph.EClassID) {
		g := egraph.NewGraph()
		_, root1, root2 := buildShared(g)
		return g, root1, root2
	}

	g1, r1a, r1b := build()
	res1 := Extract(g1, map[string]egraph.EClassID{"a": r1a, "b": r1b}, DefaultThreshold)

	g2, r2a, r2b := build()
	res2 := Extract(g2, map[string]egraph.EClassID{"a": r2a, "b": r2b}, DefaultThreshold)

	if len(res1.Temps) != len(res2.Temps) {
		t.Fatalf("temp count differs across runs: %d vs %d", len(res1.Temps), len(res2.Temps))
	}
	for i := range res1.Temps {
		if res1.Temps[i].Name != res2.Temps[i].Name || !ir.Equal(res1.Temps[i].Expr, res2.Temps[i].Expr) {
			t.Fatalf("temp %d differs across runs: %+v vs %+v", i, res1.Temps[i], res2.Temps[i])
		}
	}
	for name := range res1.Roots {
		if !ir.Equal(res1.Roots[name], res2.Roots[name]) {
			t.Fatalf("root %q differs across runs: %s vs %s", name, res1.Roots[name], res2.Roots[name])
		}
	}
	if res1.TotalCost != res2.TotalCost {
		t.Fatalf("total cost differs across runs: %d vs %d", res1.TotalCost, res2.TotalCost)
	}
}

// TestExtractBreaksEqualCostTiesDeterministically builds a class holding
// two equal-cost nodes — add(a,b) and add(b,a), merged as commutativity
// would leave them — the shape GetNodes's map iteration order would
// otherwise let leak into the extracted structure. Extract is run many
// times to make a random-map-order regression show up reliably.
func TestExtractBreaksEqualCostTiesDeterministically(t *testing.T) {
	build := func() (*egraph.EGraph, egraph.EClassID) {
		g := egraph.NewGraph()
		a := g.Add(egraph.VarNode{Name: "a"})
		b := g.Add(egraph.VarNode{Name: "b"})
		ab := g.Add(egraph.AddNode{L: a, R: b})
		ba := g.Add(egraph.AddNode{L: b, R: a})
		g.Merge(ab, ba)
		g.Rebuild()
		return g, ab
	}

	g0, root0 := build()
	first := Extract(g0, map[string]egraph.EClassID{"value": root0}, DefaultThreshold)

	for i := 0; i < 50; i++ {
		g, root := build()
		res := Extract(g, map[string]egraph.EClassID{"value": root}, DefaultThreshold)
		if !ir.Equal(res.Roots["value"], first.Roots["value"]) {
			t.Fatalf("run %d: extracted structure differs across repeated calls: got %s want %s",
				i, res.Roots["value"], first.Roots["value"])
		}
	}
}
