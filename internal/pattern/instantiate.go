package pattern

import "gradx/internal/egraph"

// Instantiate inserts pat into g under subst, inserting any e-nodes the
// e-graph doesn't already contain, and returns the
// resulting class id. subst must bind every PVar reachable in pat — the
// rule loader enforces this ahead of time (an unbound pattern
// variable in a rule's RHS is a fatal setup error), so a missing binding
// here indicates that check was skipped, not a normal runtime condition.
func Instantiate(g *egraph.EGraph, pat Pattern, subst Substitution) egraph.EClassID {
	switch p := pat.(type) {
	case PNumber:
		return g.Add(egraph.NumNode{Value: p.Value})

	case PVar:
		id, ok := subst[p.Name]
		if !ok {
			panic("pattern: unbound pattern variable ?" + p.Name + " during instantiation")
		}
		return g.Find(id)

	case PBinary:
		l := Instantiate(g, p.Left, subst)
		r := Instantiate(g, p.Right, subst)
		switch p.Op {
		case "+":
			return g.Add(egraph.AddNode{L: l, R: r})
		case "-":
			return g.Add(egraph.SubNode{L: l, R: r})
		case "*":
			return g.Add(egraph.MulNode{L: l, R: r})
		case "/":
			return g.Add(egraph.DivNode{L: l, R: r})
		case "^":
			return g.Add(egraph.PowNode{L: l, R: r})
		default:
			panic("pattern: unhandled binary operator " + string(p.Op))
		}

	case PNeg:
		x := Instantiate(g, p.Operand, subst)
		return g.Add(egraph.NegNode{X: x})

	case PInv:
		x := Instantiate(g, p.Operand, subst)
		return g.Add(egraph.InvNode{X: x})

	case PCall:
		args := make([]egraph.EClassID, len(p.Args))
		for i, a := range p.Args {
			args[i] = Instantiate(g, a, subst)
		}
		return g.Add(egraph.CallNode{Name: p.Name, Args: args})

	default:
		panic("pattern: unhandled Pattern variant")
	}
}
