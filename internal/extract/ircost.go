package extract

import "gradx/internal/ir"

// exprCost applies the same cost-model weights nodeCost uses, but over a
// plain ir.Expr tree rather than an e-graph node — needed for
// post-extraction CSE, which operates after the
// e-graph has already been discarded.
func exprCost(e ir.Expr) int {
	switch x := e.(type) {
	case *ir.Number:
		return 1
	case *ir.Variable:
		return 1
	case *ir.Binary:
		base := 2
		if x.Op == ir.Div {
			base = 8
		} else if x.Op == ir.Pow {
			base = 4
		}
		return base + exprCost(x.Left) + exprCost(x.Right)
	case *ir.Unary:
		return 1 + exprCost(x.Operand)
	case *ir.Call:
		total := 3
		for _, a := range x.Args {
			total += exprCost(a)
		}
		return total
	case *ir.Component:
		return 1 + exprCost(x.Object)
	default:
		panic("extract: unhandled Expr variant in cost model")
	}
}
