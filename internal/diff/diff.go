// Package diff implements a reverse-mode differentiator: given an
// inlined expression (its free variables are parameter components only)
// and a target component, it returns the partial derivative expression
// via the classical symbolic chain rule.
package diff

import (
	"fmt"

	"gradx/internal/builtins"
	"gradx/internal/ir"
)

// MissingGradientError is a fatal configuration error: a Call references
// a name with no registered gradient rule. It can only
// be raised for a primitive call, since composite built-ins never survive
// inlining (internal/inline expands them away).
type MissingGradientError struct {
	Name string
}

func (e *MissingGradientError) Error() string {
	return fmt.Sprintf("diff: no gradient rule registered for built-in %q", e.Name)
}

// Differentiate computes d(expr)/d(target), where target is a component
// variable name in the "param" or "param.component" format produced by
// ir.Parameter.ComponentVar / ir.ComponentRef.VarName.
//
// expr must already be inlined (internal/inline.Inline): every Variable is
// a parameter component or a fresh name, and every remaining Component
// node wraps a bare Variable acting as a component carrier — composite
// vector built-ins never reach here, since the inliner expands
// them into primitive arithmetic before differentiation runs.
func Differentiate(expr ir.Expr, target string, reg *builtins.Registry) (ir.Expr, error) {
	d := &differ{target: target, reg: reg}
	return d.diff(expr)
}

// Gradient differentiates expr with respect to every ref in targets,
// returning one expression per target, keyed by that target.
func Gradient(expr ir.Expr, targets []ir.ComponentRef, reg *builtins.Registry) (map[ir.ComponentRef]ir.Expr, error) {
	out := make(map[ir.ComponentRef]ir.Expr, len(targets))
	for _, t := range targets {
		g, err := Differentiate(expr, t.VarName(), reg)
		if err != nil {
			return nil, err
		}
		out[t] = g
	}
	return out, nil
}

type differ struct {
	target string
	reg    *builtins.Registry
}

func (d *differ) diff(e ir.Expr) (ir.Expr, error) {
	switch x := e.(type) {
	case *ir.Number:
		return ir.Num(0), nil

	case *ir.Variable:
		if x.Name == d.target {
			return ir.Num(1), nil
		}
		return ir.Num(0), nil

	case *ir.Component:
		obj, ok := x.Object.(*ir.Variable)
		if !ok {
			return nil, fmt.Errorf("diff: component access on non-variable carrier %T is not supported", x.Object)
		}
		if obj.Name+"."+x.Field == d.target {
			return ir.Num(1), nil
		}
		return ir.Num(0), nil

	case *ir.Unary:
		switch x.Op {
		case ir.Neg:
			da, err := d.diff(x.Operand)
			if err != nil {
				return nil, err
			}
			return ir.Un(ir.Neg, da), nil
		default:
			return nil, fmt.Errorf("diff: unhandled unary operator %q", x.Op)
		}

	case *ir.Binary:
		return d.diffBinary(x)

	case *ir.Call:
		return d.diffCall(x)

	default:
		panic(fmt.Sprintf("diff: unhandled Expr variant %T", e))
	}
}

func (d *differ) diffBinary(b *ir.Binary) (ir.Expr, error) {
	switch b.Op {
	case ir.Add:
		da, err := d.diff(b.Left)
		if err != nil {
			return nil, err
		}
		db, err := d.diff(b.Right)
		if err != nil {
			return nil, err
		}
		return sum(da, db), nil

	case ir.Sub:
		da, err := d.diff(b.Left)
		if err != nil {
			return nil, err
		}
		db, err := d.diff(b.Right)
		if err != nil {
			return nil, err
		}
		return difference(da, db), nil

	case ir.Mul:
		da, err := d.diff(b.Left)
		if err != nil {
			return nil, err
		}
		db, err := d.diff(b.Right)
		if err != nil {
			return nil, err
		}
		// d(a*b) = da*b + a*db
		return sum(product(da, b.Right), product(b.Left, db)), nil

	case ir.Div:
		da, err := d.diff(b.Left)
		if err != nil {
			return nil, err
		}
		db, err := d.diff(b.Right)
		if err != nil {
			return nil, err
		}
		// d(a/b) = (da*b - a*db) / b^2
		num := difference(product(da, b.Right), product(b.Left, db))
		if isZero(num) {
			return ir.Num(0), nil
		}
		return ir.Bin(ir.Div, num, ir.Bin(ir.Mul, b.Right, b.Right)), nil

	case ir.Pow:
		return d.diffPow(b.Left, b.Right)

	default:
		return nil, fmt.Errorf("diff: unhandled binary operator %q", b.Op)
	}
}

// diffPow implements d(a^b) = a^b * (db*ln(a) + b*da/a), specializing to
// b*a^(b-1)*da when b is a constant literal.
func (d *differ) diffPow(a, b ir.Expr) (ir.Expr, error) {
	da, err := d.diff(a)
	if err != nil {
		return nil, err
	}
	if c, ok := b.(*ir.Number); ok {
		if isZero(da) {
			return ir.Num(0), nil
		}
		exponent := ir.Bin(ir.Pow, a, ir.Num(c.Value-1))
		return product(product(ir.Num(c.Value), exponent), da), nil
	}

	db, err := d.diff(b)
	if err != nil {
		return nil, err
	}
	term1 := product(db, ir.Fn("log", a))
	term2 := ir.Bin(ir.Div, product(b, da), a)
	return product(ir.Bin(ir.Pow, a, b), sum(term1, term2)), nil
}

func (d *differ) diffCall(c *ir.Call) (ir.Expr, error) {
	entry, ok := d.reg.Lookup(c.Name)
	if !ok || entry.Gradient == nil {
		return nil, &MissingGradientError{Name: c.Name}
	}

	local := entry.Gradient(c.Args)
	if len(local) != len(c.Args) {
		panic(fmt.Sprintf("diff: gradient rule for %q returned %d terms for %d arguments", c.Name, len(local), len(c.Args)))
	}

	var total ir.Expr = ir.Num(0)
	for i, arg := range c.Args {
		darg, err := d.diff(arg)
		if err != nil {
			return nil, err
		}
		if isZero(darg) {
			continue
		}
		total = sum(total, product(local[i], darg))
	}
	return total, nil
}

func isZero(e ir.Expr) bool {
	n, ok := e.(*ir.Number)
	return ok && n.Value == 0
}

func isOne(e ir.Expr) bool {
	n, ok := e.(*ir.Number)
	return ok && n.Value == 1
}

// sum/difference/product apply the identity-element shortcuts a full
// local simplifier pass would apply anyway, but doing it here keeps the
// differentiator's raw output from ballooning with "0 + x" / "1 * x"
// noise before the local simplifier even runs once.
func sum(a, b ir.Expr) ir.Expr {
	if isZero(a) {
		return b
	}
	if isZero(b) {
		return a
	}
	return ir.Bin(ir.Add, a, b)
}

func difference(a, b ir.Expr) ir.Expr {
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return ir.Un(ir.Neg, b)
	}
	return ir.Bin(ir.Sub, a, b)
}

func product(a, b ir.Expr) ir.Expr {
	if isZero(a) || isZero(b) {
		return ir.Num(0)
	}
	if isOne(a) {
		return b
	}
	if isOne(b) {
		return a
	}
	return ir.Bin(ir.Mul, a, b)
}
