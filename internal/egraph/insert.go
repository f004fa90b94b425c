package egraph

import "gradx/internal/ir"

// Insert recursively adds expr's tree into the graph, structure-sharing
// any sub-expression that hash-conses against something already present,
// and returns the class id of the root.
func (g *EGraph) Insert(expr ir.Expr) EClassID {
	switch x := expr.(type) {
	case *ir.Number:
		return g.Add(NumNode{Value: x.Value})
	case *ir.Variable:
		return g.Add(VarNode{Name: x.Name})
	case *ir.Unary:
		operand := g.Insert(x.Operand)
		switch x.Op {
		case ir.Neg:
			return g.Add(NegNode{X: operand})
		default:
			panic("egraph: unhandled unary operator " + string(x.Op))
		}
	case *ir.Binary:
		l := g.Insert(x.Left)
		r := g.Insert(x.Right)
		switch x.Op {
		case ir.Add:
			return g.Add(AddNode{L: l, R: r})
		case ir.Sub:
			return g.Add(SubNode{L: l, R: r})
		case ir.Mul:
			return g.Add(MulNode{L: l, R: r})
		case ir.Div:
			return g.Add(DivNode{L: l, R: r})
		case ir.Pow:
			return g.Add(PowNode{L: l, R: r})
		default:
			panic("egraph: unhandled binary operator " + string(x.Op))
		}
	case *ir.Call:
		args := make([]EClassID, len(x.Args))
		for i, a := range x.Args {
			args[i] = g.Insert(a)
		}
		return g.Add(CallNode{Name: x.Name, Args: args})
	case *ir.Component:
		obj := g.Insert(x.Object)
		return g.Add(ComponentNode{Object: obj, Field: x.Field})
	default:
		panic("egraph: unhandled Expr variant")
	}
}

// ToExpr reconstructs an arbitrary representative expression for id,
// picking the first member node of each class it visits. It exists for
// diagnostics and tests; internal/extract performs the cost-guided
// reconstruction real compilation uses.
func (g *EGraph) ToExpr(id EClassID) ir.Expr {
	class, ok := g.GetClass(id)
	if !ok || len(class.Nodes) == 0 {
		panic("egraph: class has no member nodes")
	}
	var node ENode
	for _, n := range class.Nodes {
		node = n
		break
	}
	switch n := node.(type) {
	case NumNode:
		return ir.Num(n.Value)
	case VarNode:
		return ir.Var(n.Name)
	case AddNode:
		return ir.Bin(ir.Add, g.ToExpr(n.L), g.ToExpr(n.R))
	case SubNode:
		return ir.Bin(ir.Sub, g.ToExpr(n.L), g.ToExpr(n.R))
	case MulNode:
		return ir.Bin(ir.Mul, g.ToExpr(n.L), g.ToExpr(n.R))
	case DivNode:
		return ir.Bin(ir.Div, g.ToExpr(n.L), g.ToExpr(n.R))
	case PowNode:
		return ir.Bin(ir.Pow, g.ToExpr(n.L), g.ToExpr(n.R))
	case NegNode:
		return ir.Un(ir.Neg, g.ToExpr(n.X))
	case InvNode:
		return ir.Bin(ir.Div, ir.Num(1), g.ToExpr(n.X))
	case CallNode:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = g.ToExpr(a)
		}
		return &ir.Call{Name: n.Name, Args: args}
	case ComponentNode:
		return ir.Comp(g.ToExpr(n.Object), n.Field)
	default:
		panic("egraph: unhandled ENode variant")
	}
}
