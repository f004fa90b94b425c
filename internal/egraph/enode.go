package egraph

import (
	"fmt"
	"strconv"
	"strings"
)

// ENode is an e-node: a single IR operator applied to e-class ids rather
// than to sub-expressions. It is the sealed sum type of the e-graph —
// the e-graph's analogue of ir.Expr, with every Expr child replaced by an
// EClassID — and follows the same unexported-marker-method pattern as
// ir.Expr.
type ENode interface {
	isENode()
	// key returns a canonical string uniquely identifying this node's
	// operator and children, assuming children are already e-class ids
	// (not raw sub-expressions). Two e-nodes with equal keys are the same
	// e-node in the hashcons table.
	key() string
	// children returns this node's e-class id operands, in argument order.
	children() []EClassID
	// withChildren returns a copy of this node with children replaced by
	// the given ids, which must have the same length as children().
	withChildren(ids []EClassID) ENode
}

type NumNode struct{ Value float64 }
type VarNode struct{ Name string }
type AddNode struct{ L, R EClassID }
type SubNode struct{ L, R EClassID }
type MulNode struct{ L, R EClassID }
type DivNode struct{ L, R EClassID }
type PowNode struct{ L, R EClassID }
type NegNode struct{ X EClassID }
type InvNode struct{ X EClassID } // reciprocal, 1/x — introduced by rewrite rules, never by inlining
type CallNode struct {
	Name string
	Args []EClassID
}
type ComponentNode struct {
	Object EClassID
	Field  string
}

func (NumNode) isENode()       {}
func (VarNode) isENode()       {}
func (AddNode) isENode()       {}
func (SubNode) isENode()       {}
func (MulNode) isENode()       {}
func (DivNode) isENode()       {}
func (PowNode) isENode()       {}
func (NegNode) isENode()       {}
func (InvNode) isENode()       {}
func (CallNode) isENode()      {}
func (ComponentNode) isENode() {}

func (n NumNode) key() string { return "num:" + strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n VarNode) key() string { return "var:" + n.Name }
func (n AddNode) key() string { return keyOf("add", int(n.L), int(n.R)) }
func (n SubNode) key() string { return keyOf("sub", int(n.L), int(n.R)) }
func (n MulNode) key() string { return keyOf("mul", int(n.L), int(n.R)) }
func (n DivNode) key() string { return keyOf("div", int(n.L), int(n.R)) }
func (n PowNode) key() string { return keyOf("pow", int(n.L), int(n.R)) }
func (n NegNode) key() string { return keyOf("neg", int(n.X)) }
func (n InvNode) key() string { return keyOf("inv", int(n.X)) }
func (n CallNode) key() string {
	var b strings.Builder
	b.WriteString("call:")
	b.WriteString(n.Name)
	for _, a := range n.Args {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(a)))
	}
	return b.String()
}
func (n ComponentNode) key() string {
	return fmt.Sprintf("component:%d:%s", n.Object, n.Field)
}

func keyOf(tag string, ids ...int) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

func (n NumNode) children() []EClassID { return nil }
func (n VarNode) children() []EClassID { return nil }
func (n AddNode) children() []EClassID { return []EClassID{n.L, n.R} }
func (n SubNode) children() []EClassID { return []EClassID{n.L, n.R} }
func (n MulNode) children() []EClassID { return []EClassID{n.L, n.R} }
func (n DivNode) children() []EClassID { return []EClassID{n.L, n.R} }
func (n PowNode) children() []EClassID { return []EClassID{n.L, n.R} }
func (n NegNode) children() []EClassID { return []EClassID{n.X} }
func (n InvNode) children() []EClassID { return []EClassID{n.X} }
func (n CallNode) children() []EClassID {
	out := make([]EClassID, len(n.Args))
	copy(out, n.Args)
	return out
}
func (n ComponentNode) children() []EClassID { return []EClassID{n.Object} }

func (n NumNode) withChildren(ids []EClassID) ENode { return n }
func (n VarNode) withChildren(ids []EClassID) ENode { return n }
func (n AddNode) withChildren(ids []EClassID) ENode { return AddNode{ids[0], ids[1]} }
func (n SubNode) withChildren(ids []EClassID) ENode { return SubNode{ids[0], ids[1]} }
func (n MulNode) withChildren(ids []EClassID) ENode { return MulNode{ids[0], ids[1]} }
func (n DivNode) withChildren(ids []EClassID) ENode { return DivNode{ids[0], ids[1]} }
func (n PowNode) withChildren(ids []EClassID) ENode { return PowNode{ids[0], ids[1]} }
func (n NegNode) withChildren(ids []EClassID) ENode { return NegNode{ids[0]} }
func (n InvNode) withChildren(ids []EClassID) ENode { return InvNode{ids[0]} }
func (n CallNode) withChildren(ids []EClassID) ENode {
	args := make([]EClassID, len(ids))
	copy(args, ids)
	return CallNode{Name: n.Name, Args: args}
}
func (n ComponentNode) withChildren(ids []EClassID) ENode {
	return ComponentNode{Object: ids[0], Field: n.Field}
}

// canonicalize returns node with every child replaced by find(child). The
// result's key is stable as long as the union-find state doesn't change
// underneath it — exactly the property repair() relies on.
func canonicalize(uf *unionFind, node ENode) ENode {
	kids := node.children()
	if len(kids) == 0 {
		return node
	}
	canon := make([]EClassID, len(kids))
	changed := false
	for i, k := range kids {
		canon[i] = uf.find(k)
		if canon[i] != k {
			changed = true
		}
	}
	if !changed {
		return node
	}
	return node.withChildren(canon)
}
