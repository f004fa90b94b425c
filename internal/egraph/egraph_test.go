package egraph

import (
	"testing"

	"gradx/internal/ir"
)

func TestHashconsDeduplicatesEqualNodes(t *testing.T) {
	g := NewGraph()
	a := g.Add(VarNode{Name: "x"})
	b := g.Add(VarNode{Name: "x"})
	if a != b {
		t.Fatalf("expected identical e-nodes to hash-cons to the same class, got %d and %d", a, b)
	}

	add1 := g.Add(AddNode{L: a, R: b})
	add2 := g.Add(AddNode{L: a, R: b})
	if add1 != add2 {
		t.Fatalf("expected identical add nodes to hash-cons, got %d and %d", add1, add2)
	}
}

func TestMergeUnifiesClasses(t *testing.T) {
	g := NewGraph()
	x := g.Add(VarNode{Name: "x"})
	y := g.Add(VarNode{Name: "y"})
	if g.Find(x) == g.Find(y) {
		t.Fatalf("x and y should start in distinct classes")
	}
	merged := g.Merge(x, y)
	g.Rebuild()
	if g.Find(x) != merged || g.Find(y) != merged {
		t.Fatalf("expected x and y to share a representative after merge, got find(x)=%d find(y)=%d", g.Find(x), g.Find(y))
	}
}

// TestCongruenceClosure checks that merging two leaves propagates up to
// their parents: once x and y are merged, add(x, z) and add(y, z) must
// also land in the same class after Rebuild — this is what the rebuild
// algorithm exists to restore.
func TestCongruenceClosure(t *testing.T) {
	g := NewGraph()
	x := g.Add(VarNode{Name: "x"})
	y := g.Add(VarNode{Name: "y"})
	z := g.Add(VarNode{Name: "z"})

	addXZ := g.Add(AddNode{L: x, R: z})
	addYZ := g.Add(AddNode{L: y, R: z})
	if g.Find(addXZ) == g.Find(addYZ) {
		t.Fatalf("add(x,z) and add(y,z) should start distinct")
	}

	g.Merge(x, y)
	g.Rebuild()

	if g.Find(addXZ) != g.Find(addYZ) {
		t.Fatalf("expected congruence closure to merge add(x,z) and add(y,z) once x=y, got %d and %d", g.Find(addXZ), g.Find(addYZ))
	}
}

// TestRebuildCollapsesDuplicateParents exercises the collision path in
// repair(): two structurally distinct parent e-nodes that become equal
// after their children merge must themselves trigger a further merge.
func TestRebuildCollapsesDuplicateParents(t *testing.T) {
	g := NewGraph()
	a := g.Add(VarNode{Name: "a"})
	b := g.Add(VarNode{Name: "b"})
	c := g.Add(VarNode{Name: "c"})

	mulAC := g.Add(MulNode{L: a, R: c})
	mulBC := g.Add(MulNode{L: b, R: c})

	g.Merge(a, b)
	g.Rebuild()

	if g.Find(mulAC) != g.Find(mulBC) {
		t.Fatalf("expected mul(a,c) and mul(b,c) to collapse into one class once a=b")
	}

	// Hashcons injectivity: exactly one canonical key should map to this
	// class now, and it should resolve back to the merged class.
	canon := canonicalize(g.uf, MulNode{L: g.Find(a), R: g.Find(c)})
	id, ok := g.hashcons[canon.key()]
	if !ok {
		t.Fatalf("expected canonical mul(a,c) key to be present in hashcons after rebuild")
	}
	if g.Find(id) != g.Find(mulAC) {
		t.Fatalf("hashcons entry for the canonical key points at the wrong class")
	}
}

func TestInsertSharesStructureAcrossEqualSubtrees(t *testing.T) {
	g := NewGraph()
	// sin(x) + sin(x): both calls should hash-cons to the same e-class.
	expr := ir.Bin(ir.Add, ir.Fn("sin", ir.Var("x")), ir.Fn("sin", ir.Var("x")))
	root := g.Insert(expr)

	add, ok := g.GetClass(root)
	if !ok {
		t.Fatalf("expected root class to exist")
	}
	if len(add.Nodes) != 1 {
		t.Fatalf("expected exactly one member node for the root add, got %d", len(add.Nodes))
	}
	var node ENode
	for _, n := range add.Nodes {
		node = n
	}
	sum, ok := node.(AddNode)
	if !ok {
		t.Fatalf("expected root node to be AddNode, got %T", node)
	}
	if g.Find(sum.L) != g.Find(sum.R) {
		t.Fatalf("expected both sin(x) calls to hash-cons to the same class")
	}
}

func TestToExprRoundTripsInsertedTree(t *testing.T) {
	g := NewGraph()
	expr := ir.Bin(ir.Mul, ir.Num(2), ir.Var("x"))
	root := g.Insert(expr)
	out := g.ToExpr(root)
	if !ir.Equal(out, expr) {
		t.Fatalf("expected round-tripped expression %s to equal original %s", out, expr)
	}
}

func TestFindIsIdempotentAfterChainedMerges(t *testing.T) {
	g := NewGraph()
	ids := make([]EClassID, 5)
	for i := range ids {
		ids[i] = g.Add(NumNode{Value: float64(i)})
	}
	for i := 1; i < len(ids); i++ {
		g.Merge(ids[0], ids[i])
	}
	g.Rebuild()

	root := g.Find(ids[0])
	for _, id := range ids {
		if g.Find(id) != root {
			t.Fatalf("expected all chained merges to share representative %d, got %d for id %d", root, g.Find(id), id)
		}
	}
	if g.Find(root) != root {
		t.Fatalf("find on a representative must be a fixed point")
	}
}
