// Package egraph implements an e-graph: a
// congruence-closed structure of e-classes, each holding a set of
// equivalent e-nodes, joined by hash-consing and an incremental rebuild
// that restores congruence after a batch of merges.
//
// This package is written in the small-exhaustive-switch,
// explicit-id-type idiom the rest of this repo follows. Its union-find
// is grounded on katalvlaran/lvlath's Kruskal disjoint-set (see
// unionfind.go); the rebuild repairs each parent entry of a merged class
// in a single pass: it recanonicalizes the node, moves its hashcons
// entry to the new key, and merges classes whose nodes collide there.
package egraph

// parentEntry records that node (as originally constructed, with whatever
// child ids were canonical when it was added) is a member of the class
// that was "owner" at that time. find(owner) always yields the class's
// current representative regardless of how many merges happened since —
// that is the defining guarantee of union-find. repair updates node,
// owner and lastKey in place when it recanonicalizes the entry.
type parentEntry struct {
	node    ENode
	owner   EClassID
	lastKey string // the key this node was most recently filed under, so repair knows what to evict
}

// EClass is one equivalence class: a stable id, the set of member e-nodes
// (keyed canonically), and the parent entries — e-nodes elsewhere in the
// graph that reference this class as a direct child.
type EClass struct {
	ID      EClassID
	Nodes   map[string]ENode
	parents []*parentEntry
}

// EGraph is the mutable e-graph: a union-find over class ids, the class
// arena, and the hashcons table mapping every canonical e-node key to the
// class id containing it.
type EGraph struct {
	uf       *unionFind
	classes  map[EClassID]*EClass
	hashcons map[string]EClassID
	pending  []EClassID
}

// NewGraph returns an empty e-graph.
func NewGraph() *EGraph {
	return &EGraph{
		uf:       newUnionFind(),
		classes:  make(map[EClassID]*EClass),
		hashcons: make(map[string]EClassID),
	}
}

// Find returns the current representative of id.
func (g *EGraph) Find(id EClassID) EClassID { return g.uf.find(id) }

// Lookup returns the class id containing node, if any e-node with that
// canonical shape has already been added.
func (g *EGraph) Lookup(node ENode) (EClassID, bool) {
	canon := canonicalize(g.uf, node)
	id, ok := g.hashcons[canon.key()]
	if !ok {
		return 0, false
	}
	return g.uf.find(id), true
}

// Add inserts node, canonicalizing its children first. If an equal e-node
// already exists, its class is returned unchanged (hash-consing);
// otherwise a fresh class is allocated and node is registered as a
// parent of each of its children's classes.
func (g *EGraph) Add(node ENode) EClassID {
	canon := canonicalize(g.uf, node)
	key := canon.key()
	if id, ok := g.hashcons[key]; ok {
		return g.uf.find(id)
	}

	id := g.uf.newClass()
	class := &EClass{ID: id, Nodes: map[string]ENode{key: canon}}
	g.classes[id] = class
	g.hashcons[key] = id

	entry := &parentEntry{node: canon, owner: id, lastKey: key}
	for _, child := range canon.children() {
		childClass := g.classes[g.uf.find(child)]
		childClass.parents = append(childClass.parents, entry)
	}
	return id
}

// Merge unifies the classes containing a and b, returning the surviving
// id. The two classes' node sets and parent lists are combined into the
// survivor, and the survivor is queued for Rebuild to restore congruence.
// Merging never removes information — it only unifies ids.
func (g *EGraph) Merge(a, b EClassID) EClassID {
	ra, rb := g.uf.find(a), g.uf.find(b)
	if ra == rb {
		return ra
	}
	survivor := g.uf.union(ra, rb)
	loser := ra
	if survivor == ra {
		loser = rb
	}

	survivorClass := g.classes[survivor]
	loserClass := g.classes[loser]
	for k, n := range loserClass.Nodes {
		survivorClass.Nodes[k] = n
	}
	survivorClass.parents = append(survivorClass.parents, loserClass.parents...)
	delete(g.classes, loser)

	g.pending = append(g.pending, survivor)
	return survivor
}

// Rebuild restores congruence after a batch of merges: every e-node whose
// canonical form changed because one of its children merged is
// re-canonicalized, and any resulting hashcons collision triggers a
// further merge, which may itself require another round. The congruence
// invariants ("every stored child id equals find(child)", "the hashcons
// table is injective on canonical e-nodes") hold once Rebuild returns,
// though they may be violated transiently between Merge calls.
func (g *EGraph) Rebuild() {
	for len(g.pending) > 0 {
		todo := g.dedupePending()
		g.pending = nil
		for _, id := range todo {
			g.repair(id)
		}
	}
}

func (g *EGraph) dedupePending() []EClassID {
	seen := make(map[EClassID]bool, len(g.pending))
	var todo []EClassID
	for _, id := range g.pending {
		root := g.uf.find(id)
		if !seen[root] {
			seen[root] = true
			todo = append(todo, root)
		}
	}
	return todo
}

// repair fixes every parent entry recorded against classID: each is
// re-canonicalized against the current union-find state, its hashcons
// entry is moved to the new key, and a collision with a different
// existing class triggers a merge (which re-enqueues further repair
// work). The owning class's Nodes map is kept in lock-step so member sets
// stay canonical too.
func (g *EGraph) repair(classID EClassID) {
	classID = g.uf.find(classID)
	class, ok := g.classes[classID]
	if !ok {
		return // merged away by a repair triggered earlier in this same round
	}

	for _, entry := range class.parents {
		canon := canonicalize(g.uf, entry.node)
		newKey := canon.key()
		ownerRoot := g.uf.find(entry.owner)

		if newKey != entry.lastKey {
			delete(g.hashcons, entry.lastKey)
			if owner, ok := g.classes[ownerRoot]; ok {
				delete(owner.Nodes, entry.lastKey)
			}
		}

		if existing, collide := g.hashcons[newKey]; collide && g.uf.find(existing) != ownerRoot {
			ownerRoot = g.Merge(existing, ownerRoot)
		}

		g.hashcons[newKey] = ownerRoot
		if owner, ok := g.classes[ownerRoot]; ok {
			owner.Nodes[newKey] = canon
		}
		entry.node = canon
		entry.owner = ownerRoot
		entry.lastKey = newKey
	}
}

// GetClass returns the class currently representing id (after find), or
// false if id has been merged away and has no surviving record — which
// cannot happen for any id returned by Add/Merge/Find on this graph.
func (g *EGraph) GetClass(id EClassID) (*EClass, bool) {
	class, ok := g.classes[g.uf.find(id)]
	return class, ok
}

// GetNodes returns the canonical member e-nodes of id's class.
func (g *EGraph) GetNodes(id EClassID) []ENode {
	class, ok := g.GetClass(id)
	if !ok {
		return nil
	}
	out := make([]ENode, 0, len(class.Nodes))
	for _, n := range class.Nodes {
		out = append(out, n)
	}
	return out
}

// GetClassIds returns every live e-class id in the graph, in no
// particular order.
func (g *EGraph) GetClassIds() []EClassID {
	out := make([]EClassID, 0, len(g.classes))
	for id := range g.classes {
		out = append(out, id)
	}
	return out
}

// Size returns the number of live e-classes.
func (g *EGraph) Size() int { return len(g.classes) }
