package extract

import "gradx/internal/egraph"

// countReferences walks the best-node tree of every root and counts how
// many times each class is referenced, using a
// per-path visited set so a class reachable from itself along some path
// (a cycle that shouldn't occur after saturation, but topoSortTemps
// still guards against it) doesn't recurse forever.
func countReferences(g *egraph.EGraph, costs map[egraph.EClassID]int, roots []egraph.EClassID) map[egraph.EClassID]int {
	counts := make(map[egraph.EClassID]int)
	for _, r := range roots {
		walkReferences(g, costs, g.Find(r), counts, map[egraph.EClassID]bool{})
	}
	return counts
}

func walkReferences(g *egraph.EGraph, costs map[egraph.EClassID]int, id egraph.EClassID, counts map[egraph.EClassID]int, path map[egraph.EClassID]bool) {
	id = g.Find(id)
	counts[id]++
	if path[id] {
		return
	}
	path[id] = true
	node, _ := bestNode(g, costs, id)
	for _, child := range node.children() {
		walkReferences(g, costs, child, counts, path)
	}
	delete(path, id)
}
