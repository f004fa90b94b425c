// Package inline implements the inliner: it substitutes every
// intermediate binding into the return expression until only parameter
// components and literals remain, and — since the expansion is also a
// pure substitution — it expands vector-valued composite built-ins
// (dot2d, cross3d, normalize2d, ...) into arithmetic over primitive
// built-ins in the same pass, since vector Jacobians need to be expanded
// componentwise before differentiation.
package inline

import (
	"gradx/internal/builtins"
	"gradx/internal/ir"
)

// Inline walks fn's body once, producing a map from binding name to its
// defining expression, then substitutes the return expression.
//
// The inliner assumes fn.Body is single-assignment and strictly
// forward-defining: each binding may only reference parameter components
// or earlier bindings. This is a caller invariant, not something Inline
// detects or reports.
func Inline(fn *ir.Function, reg *builtins.Registry) ir.Expr {
	defs := make(map[string]ir.Expr, len(fn.Body))
	for _, b := range fn.Body {
		defs[b.Name] = b.Expr
	}
	s := &substituter{defs: defs, reg: reg, cache: make(map[string]ir.Expr)}
	return s.subst(fn.Return)
}

type substituter struct {
	defs  map[string]ir.Expr
	reg   *builtins.Registry
	cache map[string]ir.Expr // memoizes binding-name -> fully substituted expr
}

func (s *substituter) subst(e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Number:
		return x
	case *ir.Variable:
		def, ok := s.defs[x.Name]
		if !ok {
			return x // parameter component: nothing to substitute
		}
		if cached, ok := s.cache[x.Name]; ok {
			return cached
		}
		substituted := s.subst(def)
		s.cache[x.Name] = substituted
		return substituted
	case *ir.Binary:
		return ir.Bin(x.Op, s.subst(x.Left), s.subst(x.Right))
	case *ir.Unary:
		return ir.Un(x.Op, s.subst(x.Operand))
	case *ir.Call:
		args := make([]ir.Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = s.subst(a)
		}
		if entry, ok := s.reg.Lookup(x.Name); ok && entry.Expand != nil {
			return entry.Expand(args)
		}
		return &ir.Call{Name: x.Name, Args: args}
	case *ir.Component:
		obj := s.subst(x.Object)
		if call, ok := obj.(*ir.Call); ok {
			if entry, ok := s.reg.Lookup(call.Name); ok && entry.ExpandComponent != nil {
				return entry.ExpandComponent(call.Args, x.Field)
			}
		}
		return ir.Comp(obj, x.Field)
	default:
		panic("inline: unhandled Expr variant")
	}
}
