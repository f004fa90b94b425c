// Package simplify implements the local algebraic simplifier: a fixpoint bottom-up rewriter over the IR that constant-folds
// and cancels obvious identities. It exists to bound the e-graph's
// starting size before saturation (internal/egraph, internal/rewrite) —
// it is a complexity reducer, not a correctness contract in its own
// right.
package simplify

import (
	"math"

	"gradx/internal/ir"
)

// Simplify repeatedly applies one bottom-up pass until a pass produces a
// structurally equal output.
func Simplify(e ir.Expr) ir.Expr {
	for {
		next := pass(e)
		if ir.Equal(next, e) {
			return next
		}
		e = next
	}
}

// pass applies every rewrite rule once, bottom-up: children are
// simplified first, then the node itself is checked against each rule in
// turn.
func pass(e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Number, *ir.Variable:
		return e

	case *ir.Unary:
		operand := pass(x.Operand)
		return simplifyUnary(x.Op, operand)

	case *ir.Binary:
		left := pass(x.Left)
		right := pass(x.Right)
		return simplifyBinary(x.Op, left, right)

	case *ir.Call:
		args := make([]ir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = pass(a)
		}
		return &ir.Call{Name: x.Name, Args: args}

	case *ir.Component:
		obj := pass(x.Object)
		// (a+b).x -> a.x + b.x, (a-b).x -> a.x - b.x, (-a).x -> -(a.x):
		// distribution of component access over binary/unary operators.
		// The surface parser flattens parameter fields to variables such as
		// "u.x" and produces a Component only around a call, but the
		// simplifier applies the identity to any object expression.
		switch o := obj.(type) {
		case *ir.Binary:
			if o.Op == ir.Add || o.Op == ir.Sub {
				return simplifyBinary(o.Op, ir.Comp(o.Left, x.Field), ir.Comp(o.Right, x.Field))
			}
		case *ir.Unary:
			if o.Op == ir.Neg {
				return simplifyUnary(ir.Neg, ir.Comp(o.Operand, x.Field))
			}
		}
		return ir.Comp(obj, x.Field)

	default:
		panic("simplify: unhandled Expr variant")
	}
}

func simplifyUnary(op ir.UnaryOp, operand ir.Expr) ir.Expr {
	if op != ir.Neg {
		return ir.Un(op, operand)
	}
	if n, ok := operand.(*ir.Number); ok {
		return ir.Num(-n.Value)
	}
	// double negation: -(-a) -> a
	if u, ok := operand.(*ir.Unary); ok && u.Op == ir.Neg {
		return u.Operand
	}
	return ir.Un(ir.Neg, operand)
}

func simplifyBinary(op ir.BinaryOp, left, right ir.Expr) ir.Expr {
	if ln, lok := left.(*ir.Number); lok {
		if rn, rok := right.(*ir.Number); rok {
			if folded, ok := foldConstant(op, ln.Value, rn.Value); ok {
				return ir.Num(folded)
			}
		}
	}

	switch op {
	case ir.Add:
		return simplifyAdd(left, right)
	case ir.Sub:
		return simplifySub(left, right)
	case ir.Mul:
		return simplifyMul(left, right)
	case ir.Div:
		return simplifyDiv(left, right)
	case ir.Pow:
		return simplifyPow(left, right)
	default:
		return ir.Bin(op, left, right)
	}
}

func foldConstant(op ir.BinaryOp, l, r float64) (float64, bool) {
	switch op {
	case ir.Add:
		return l + r, true
	case ir.Sub:
		return l - r, true
	case ir.Mul:
		return l * r, true
	case ir.Div:
		return l / r, true // IEEE-754 result (±Inf/NaN) on r==0, matching Go's own float semantics
	case ir.Pow:
		return math.Pow(l, r), true
	default:
		return 0, false
	}
}

func isNum(e ir.Expr, v float64) bool {
	n, ok := e.(*ir.Number)
	return ok && n.Value == v
}

func asNeg(e ir.Expr) (ir.Expr, bool) {
	if u, ok := e.(*ir.Unary); ok && u.Op == ir.Neg {
		return u.Operand, true
	}
	return nil, false
}

func simplifyAdd(left, right ir.Expr) ir.Expr {
	if isNum(left, 0) {
		return right
	}
	if isNum(right, 0) {
		return left
	}
	// a + (-b) -> a - b
	if neg, ok := asNeg(right); ok {
		return simplifySub(left, neg)
	}
	// (-a) + b -> b - a
	if neg, ok := asNeg(left); ok {
		return simplifySub(right, neg)
	}
	// a + a -> 2*a ; 0.5*(a+a) is handled in simplifyMul via this canonical form
	if ir.Equal(left, right) {
		return ir.Bin(ir.Mul, ir.Num(2), left)
	}
	return ir.Bin(ir.Add, left, right)
}

func simplifySub(left, right ir.Expr) ir.Expr {
	if isNum(right, 0) {
		return left
	}
	if isNum(left, 0) {
		return simplifyUnary(ir.Neg, right)
	}
	if ir.Equal(left, right) {
		return ir.Num(0)
	}
	if neg, ok := asNeg(right); ok {
		return simplifyAdd(left, neg)
	}
	return ir.Bin(ir.Sub, left, right)
}

func simplifyMul(left, right ir.Expr) ir.Expr {
	if isNum(left, 0) || isNum(right, 0) {
		return ir.Num(0)
	}
	if isNum(left, 1) {
		return right
	}
	if isNum(right, 1) {
		return left
	}
	// (-a)*(-b) -> a*b
	if ln, lok := asNeg(left); lok {
		if rn, rok := asNeg(right); rok {
			return simplifyMul(ln, rn)
		}
		// (-a)*b -> -(a*b)
		return simplifyUnary(ir.Neg, simplifyMul(ln, right))
	}
	if rn, rok := asNeg(right); rok {
		// a*(-b) -> -(a*b)
		return simplifyUnary(ir.Neg, simplifyMul(left, rn))
	}
	// 0.5*(a+a) -> a  (arises constantly from the differentiator's product rule);
	// bottom-up, a+a has already become 2*a, so that form is accepted too
	if isNum(left, 0.5) {
		if add, ok := right.(*ir.Binary); ok && add.Op == ir.Add && ir.Equal(add.Left, add.Right) {
			return add.Left
		}
		if m, ok := right.(*ir.Binary); ok && m.Op == ir.Mul && isNum(m.Left, 2) {
			return m.Right
		}
	}
	if isNum(right, 0.5) {
		if add, ok := left.(*ir.Binary); ok && add.Op == ir.Add && ir.Equal(add.Left, add.Right) {
			return add.Left
		}
		if m, ok := left.(*ir.Binary); ok && m.Op == ir.Mul && isNum(m.Left, 2) {
			return m.Right
		}
	}
	return ir.Bin(ir.Mul, left, right)
}

func simplifyDiv(left, right ir.Expr) ir.Expr {
	if isNum(right, 1) {
		return left
	}
	if ir.Equal(left, right) {
		return ir.Num(1) // a/a -> 1, applied without regard to a==0
	}
	// (a*b + b*a) / (2*c) -> (a*b)/c : a curated pattern that arises from
	// differentiating a product and then halving it.
	if num, ok := left.(*ir.Binary); ok && num.Op == ir.Add {
		if denom, ok := right.(*ir.Binary); ok && denom.Op == ir.Mul && isNum(denom.Left, 2) {
			if isCommutedProduct(num.Left, num.Right) {
				return simplifyDiv(num.Left, denom.Right)
			}
		}
	}
	// (-a)/(-b) -> a/b
	if ln, lok := asNeg(left); lok {
		if rn, rok := asNeg(right); rok {
			return simplifyDiv(ln, rn)
		}
		return simplifyUnary(ir.Neg, simplifyDiv(ln, right))
	}
	if rn, rok := asNeg(right); rok {
		return simplifyUnary(ir.Neg, simplifyDiv(left, rn))
	}
	return ir.Bin(ir.Div, left, right)
}

// isCommutedProduct reports whether a and b are a*b and b*a for the same
// pair of factors (in either order).
func isCommutedProduct(a, b ir.Expr) bool {
	am, aok := a.(*ir.Binary)
	bm, bok := b.(*ir.Binary)
	if !aok || !bok || am.Op != ir.Mul || bm.Op != ir.Mul {
		return false
	}
	return ir.Equal(am.Left, bm.Right) && ir.Equal(am.Right, bm.Left)
}

func simplifyPow(left, right ir.Expr) ir.Expr {
	if isNum(right, 0) {
		return ir.Num(1)
	}
	if isNum(right, 1) {
		return left
	}
	return ir.Bin(ir.Pow, left, right)
}
