package extract

import "gradx/internal/ir"

// substituteExpr returns tree with every subtree structurally equal to
// target replaced by replacement. A node that matches is not itself
// recursed into further (target and replacement are assumed disjoint at
// this package's call site, post-extraction CSE; temp inlining uses
// inlineVar instead).
func substituteExpr(tree, target, replacement ir.Expr) ir.Expr {
	if ir.Equal(tree, target) {
		return replacement
	}
	switch x := tree.(type) {
	case *ir.Number, *ir.Variable:
		return tree
	case *ir.Binary:
		return ir.Bin(x.Op, substituteExpr(x.Left, target, replacement), substituteExpr(x.Right, target, replacement))
	case *ir.Unary:
		return ir.Un(x.Op, substituteExpr(x.Operand, target, replacement))
	case *ir.Call:
		args := make([]ir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = substituteExpr(a, target, replacement)
		}
		return &ir.Call{Name: x.Name, Args: args}
	case *ir.Component:
		return ir.Comp(substituteExpr(x.Object, target, replacement), x.Field)
	default:
		panic("extract: unhandled Expr variant in substitution")
	}
}

// countVarUses counts references to a variable named name within tree.
func countVarUses(tree ir.Expr, name string) int {
	count := 0
	ir.Walk(tree, func(e ir.Expr) {
		if v, ok := e.(*ir.Variable); ok && v.Name == name {
			count++
		}
	})
	return count
}

// subexprCount records one representative occurrence of a distinct
// subexpression and how many times it was seen across a set of trees.
type subexprCount struct {
	expr  ir.Expr
	count int
}

// collectSubexprCounts walks every tree fully (every internal node, not
// just roots) and tallies occurrences of each distinct subexpression by
// its serialized form, which is exactly structural equality for this
// IR's fully-parenthesized String().
func collectSubexprCounts(trees []ir.Expr) map[string]*subexprCount {
	counts := make(map[string]*subexprCount)
	var walk func(ir.Expr)
	walk = func(e ir.Expr) {
		key := e.String()
		if c, ok := counts[key]; ok {
			c.count++
		} else {
			counts[key] = &subexprCount{expr: e, count: 1}
		}
		switch x := e.(type) {
		case *ir.Number, *ir.Variable:
		case *ir.Binary:
			walk(x.Left)
			walk(x.Right)
		case *ir.Unary:
			walk(x.Operand)
		case *ir.Call:
			for _, a := range x.Args {
				walk(a)
			}
		case *ir.Component:
			walk(x.Object)
		default:
			panic("extract: unhandled Expr variant while collecting subexpressions")
		}
	}
	for _, t := range trees {
		walk(t)
	}
	return counts
}
