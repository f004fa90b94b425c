// Package ir defines the expression intermediate representation shared by
// every stage of the gradient compiler: the inliner, differentiator, local
// simplifier, e-graph optimizer, and extractor all consume and produce
// trees rooted in Expr.
package ir

import "fmt"

// BinaryOp is the set of supported binary operators.
type BinaryOp string

const (
	Add BinaryOp = "+"
	Sub BinaryOp = "-"
	Mul BinaryOp = "*"
	Div BinaryOp = "/"
	Pow BinaryOp = "^"
)

// UnaryOp is the set of supported unary operators. Unary plus is accepted
// by the surface syntax but normalized away before it reaches the core.
type UnaryOp string

const (
	Neg UnaryOp = "-"
)

// Expr is the closed sum type for the expression IR: numeric literals,
// variable references, binary/unary operators, built-in calls, and
// field access on vector/struct components. Every concrete variant
// implements isExpr so the set of cases is sealed to this package. Go
// does not check a type switch for exhaustiveness, so a switch that
// forgets a variant still compiles, which is why every consumer in this
// repo also carries a `default: panic` arm naming the missing case.
type Expr interface {
	isExpr()
	// String renders the expression using its natural infix/call syntax,
	// fully parenthesized around binary operators so the output is
	// unambiguous regardless of the reader's precedence table.
	String() string
}

func (*Number) isExpr()    {}
func (*Variable) isExpr()  {}
func (*Binary) isExpr()    {}
func (*Unary) isExpr()     {}
func (*Call) isExpr()      {}
func (*Component) isExpr() {}

// Number is a real-valued literal.
type Number struct {
	Value float64
}

// Variable is a reference to a parameter component or a fresh temp name
// produced by the extractor. Inlining guarantees that by the time an
// expression reaches the differentiator, every Variable names a parameter
// component.
type Variable struct {
	Name string
}

// Binary is a two-operand arithmetic node.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary is a single-operand arithmetic node. Only negation survives past
// the surface parser; unary plus is elided there.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// Call is an application of a named built-in function to an ordered
// argument list. The built-in registry (internal/builtins) is the
// authority on which names are valid and what each argument's shape is.
type Call struct {
	Name string
	Args []Expr
}

// Component is field/component access on an object, e.g. `u.x` for a
// vec2 parameter `u`, or `u.x.re` were objects ever nested (they are not,
// in this language: components bottom out in scalars).
type Component struct {
	Object Expr
	Field  string
}

func Num(v float64) *Number           { return &Number{Value: v} }
func Var(name string) *Variable       { return &Variable{Name: name} }
func Bin(op BinaryOp, l, r Expr) *Binary { return &Binary{Op: op, Left: l, Right: r} }
func Un(op UnaryOp, e Expr) *Unary     { return &Unary{Op: op, Operand: e} }
func Fn(name string, args ...Expr) *Call { return &Call{Name: name, Args: args} }
func Comp(obj Expr, field string) *Component { return &Component{Object: obj, Field: field} }

func (n *Number) String() string {
	return fmt.Sprintf("%g", n.Value)
}

func (v *Variable) String() string {
	return v.Name
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

func (u *Unary) String() string {
	return fmt.Sprintf("(%s%s)", u.Op, u.Operand.String())
}

func (c *Call) String() string {
	args := ""
	for i, a := range c.Args {
		if i > 0 {
			args += ", "
		}
		args += a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, args)
}

func (c *Component) String() string {
	return fmt.Sprintf("%s.%s", c.Object.String(), c.Field)
}

// Equal reports whether two expressions are structurally identical.
// Structural equality is recursive and total: every variant is compared
// field-by-field, never by pointer identity.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Component:
		y, ok := b.(*Component)
		return ok && x.Field == y.Field && Equal(x.Object, y.Object)
	default:
		panic(fmt.Sprintf("ir: unhandled Expr variant %T in Equal", a))
	}
}

// Walk invokes fn on every node of the tree in pre-order, including the
// root. fn may be called for side effects (collecting free variables,
// counting nodes); Walk does not support rewriting in place since Expr is
// immutable by design.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	switch x := e.(type) {
	case *Number, *Variable:
		// leaves
	case *Binary:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *Unary:
		Walk(x.Operand, fn)
	case *Call:
		for _, a := range x.Args {
			Walk(a, fn)
		}
	case *Component:
		Walk(x.Object, fn)
	default:
		panic(fmt.Sprintf("ir: unhandled Expr variant %T in Walk", e))
	}
}

// FreeVariables returns the set of distinct Variable names referenced by e.
func FreeVariables(e Expr) map[string]bool {
	names := make(map[string]bool)
	Walk(e, func(n Expr) {
		if v, ok := n.(*Variable); ok {
			names[v.Name] = true
		}
	})
	return names
}
