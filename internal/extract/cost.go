// Package extract implements the cost-model-driven extractor with CSE:
// given a saturated e-graph and a set of root
// e-class ids, it computes per-class minimum tree cost by fixed-point
// iteration, walks each root picking the cheapest node at every class,
// promotes shared sub-trees above a cost threshold into named temporaries,
// and orders the temporaries topologically.
package extract

import "gradx/internal/egraph"

// infiniteCost represents an unreachable class's cost during the
// fixed-point computation: unreachable costs start at infinity. Kept
// well below the range an int can safely sum many of
// without overflowing.
const infiniteCost = 1 << 30

// nodeCost is the cost-model table: a total function from
// e-node tag to a positive integer, division deliberately priced above
// multiplication to bias extraction away from it when an algebraically
// equal multiplication-based form exists in the same e-class.
func nodeCost(n egraph.ENode) int {
	switch n.(type) {
	case egraph.NumNode:
		return 1
	case egraph.VarNode:
		return 1
	case egraph.AddNode:
		return 2
	case egraph.SubNode:
		return 2
	case egraph.MulNode:
		return 2
	case egraph.NegNode:
		return 1
	case egraph.ComponentNode:
		return 1
	case egraph.CallNode:
		return 3
	case egraph.PowNode:
		return 4
	case egraph.InvNode:
		return 5
	case egraph.DivNode:
		return 8
	default:
		panic("extract: unhandled ENode variant in cost model")
	}
}

// computeCosts runs the minimum-tree-cost fixed point
// over every live class in g, bounded at 100 iterations.
func computeCosts(g *egraph.EGraph) map[egraph.EClassID]int {
	ids := g.GetClassIds()
	costs := make(map[egraph.EClassID]int, len(ids))
	for _, id := range ids {
		costs[id] = infiniteCost
	}

	for iter := 0; iter < 100; iter++ {
		changed := false
		for _, id := range ids {
			best := costs[id]
			for _, node := range g.GetNodes(id) {
				c := nodeTotalCost(node, costs)
				if c < best {
					best = c
				}
			}
			if best != costs[id] {
				costs[id] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return costs
}

// nodeTotalCost is node's own tag cost plus the current costs of its
// children classes, saturating at infiniteCost if any child is still
// unreachable.
func nodeTotalCost(node egraph.ENode, costs map[egraph.EClassID]int) int {
	total := nodeCost(node)
	for _, child := range node.children() {
		c, ok := costs[child]
		if !ok || c >= infiniteCost {
			return infiniteCost
		}
		total += c
	}
	return total
}

// bestNode returns the lowest-total-cost member node of id's class under
// costs, and that cost. id's class must have at least one member node
// (every live class does, by construction). GetNodes ranges a map, so
// ties are broken by node.key() rather than map iteration order —
// saturation routinely leaves equal-cost nodes in the same class (e.g.
// add(a,b) and add(b,a)), and picking the first one out of the map would
// make the extracted expression structure vary run to run.
func bestNode(g *egraph.EGraph, costs map[egraph.EClassID]int, id egraph.EClassID) (egraph.ENode, int) {
	nodes := g.GetNodes(id)
	best := nodes[0]
	bestCost := nodeTotalCost(best, costs)
	bestKey := best.key()
	for _, n := range nodes[1:] {
		c := nodeTotalCost(n, costs)
		k := n.key()
		if c < bestCost || (c == bestCost && k < bestKey) {
			best, bestCost, bestKey = n, c, k
		}
	}
	return best, bestCost
}
