// Package emit renders a pipeline.CompileResult as Go source text: one
// function for the compiled value, one per differentiable gradient
// component, and the ordered temporary declarations both share. Grounded
// on kanso/internal/ir/printer.go's indent-tracking strings.Builder
// walking a fixed node-kind switch, generalized from an EVM IR dump to a
// plain arithmetic expression printer targeting Go syntax.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"gradx/internal/extract"
	"gradx/internal/ir"
	"gradx/internal/pipeline"
)

// mathFunc maps a primitive built-in name to its math package
// equivalent. Names absent here (max, min, clamp) have no direct stdlib
// counterpart and are special-cased in printer.printCall instead.
var mathFunc = map[string]string{
	"sin":   "math.Sin",
	"cos":   "math.Cos",
	"tan":   "math.Tan",
	"asin":  "math.Asin",
	"acos":  "math.Acos",
	"atan":  "math.Atan",
	"atan2": "math.Atan2",
	"exp":   "math.Exp",
	"log":   "math.Log",
	"sqrt":  "math.Sqrt",
	"abs":   "math.Abs",
	"pow":   "math.Pow",
}

// Emit renders res as a standalone Go source fragment: a header comment
// with the run id, saturation stats, and advisories, the shared temp
// declarations, a Value function, and one Gradient_<component> function
// per differentiable component (dots in the name become underscores).
func Emit(fnName string, res *pipeline.CompileResult) string {
	p := &printer{}
	p.printHeader(fnName, res)
	p.writeLine("")
	p.writeLine("package compiled")
	p.writeLine("")
	p.writeLine("import \"math\"")
	p.writeLine("")

	params := collectParams(res)

	p.printFunction("Value", params, res.Temps, res.Value)
	p.writeLine("")

	names := make([]string, 0, len(res.Gradients))
	byName := make(map[string]ir.Expr, len(res.Gradients))
	for ref, expr := range res.Gradients {
		n := ref.VarName()
		names = append(names, n)
		byName[n] = expr
	}
	sort.Strings(names)
	for _, n := range names {
		p.printFunction("Gradient_"+sanitize(n), params, res.Temps, byName[n])
		p.writeLine("")
	}

	return p.output.String()
}

// collectParams recovers a stable, sorted list of every component
// variable ("x", "u.x", "u.y", ...) referenced across the value and
// every gradient component, since CompileResult carries no direct
// reference back to the ir.Function it was compiled from. Each component
// becomes its own Go argument — the surface parser already flattens
// vector parameters into one scalar per component before this ever runs.
func collectParams(res *pipeline.CompileResult) []string {
	temps := make(map[string]bool, len(res.Temps))
	for _, t := range res.Temps {
		temps[t.Name] = true
	}
	seen := make(map[string]bool)
	add := func(e ir.Expr) {
		for name := range ir.FreeVariables(e) {
			if !temps[name] {
				seen[name] = true
			}
		}
	}
	add(res.Value)
	for _, g := range res.Gradients {
		add(g)
	}
	for _, t := range res.Temps {
		add(t.Expr)
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

type printer struct {
	indent int
	output strings.Builder
}

func (p *printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("\t")
	}
}

func (p *printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *printer) printHeader(fnName string, res *pipeline.CompileResult) {
	p.writeLine("// Code generated from %s by gradx. DO NOT EDIT.", fnName)
	p.writeLine("// run %s", res.RunID)
	p.writeLine("// saturation: %d iterations, %d classes, %d merges, saturated=%t",
		res.Stats.Iterations, res.Stats.FinalClassCount, res.Stats.Merges, res.Stats.Saturated)
	p.writeLine("// total extracted cost: %d", res.TotalCost)
	for _, a := range res.Advisories {
		p.writeLine("// %s: %s", a.Code, a.Message)
	}
}

func (p *printer) printFunction(name string, params []string, temps []extract.Temp, ret ir.Expr) {
	args := make([]string, len(params))
	for i, n := range params {
		args[i] = sanitize(n) + " float64"
	}
	p.writeLine("func %s(%s) float64 {", name, strings.Join(args, ", "))
	p.indent++
	for _, t := range temps {
		p.writeLine("%s := %s", sanitize(t.Name), p.expr(t.Expr))
	}
	p.writeLine("return %s", p.expr(ret))
	p.indent--
	p.writeLine("}")
}

func (p *printer) expr(e ir.Expr) string {
	switch x := e.(type) {
	case *ir.Number:
		return fmt.Sprintf("%g", x.Value)
	case *ir.Variable:
		return sanitize(x.Name)
	case *ir.Binary:
		if x.Op == ir.Pow {
			// Go's ^ is bitwise xor, not exponentiation; every Pow binary
			// node (as opposed to a pow(...) call) prints as math.Pow.
			return fmt.Sprintf("math.Pow(%s, %s)", p.expr(x.Left), p.expr(x.Right))
		}
		return fmt.Sprintf("(%s %s %s)", p.expr(x.Left), string(x.Op), p.expr(x.Right))
	case *ir.Unary:
		return fmt.Sprintf("(-%s)", p.expr(x.Operand))
	case *ir.Call:
		return p.printCall(x)
	case *ir.Component:
		// Only reachable if a composite built-in's ExpandComponent wasn't
		// applied during inlining, i.e. the object isn't actually a call;
		// internal/inline guarantees every remaining Component wraps a
		// bare variable carrier (a plain vector/struct parameter field).
		return fmt.Sprintf("%s_%s", p.expr(x.Object), x.Field)
	default:
		panic("emit: unhandled Expr variant")
	}
}

func (p *printer) printCall(c *ir.Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = p.expr(a)
	}
	switch c.Name {
	case "max":
		return fmt.Sprintf("math.Max(%s)", strings.Join(args, ", "))
	case "min":
		return fmt.Sprintf("math.Min(%s)", strings.Join(args, ", "))
	case "clamp":
		if len(args) == 3 {
			return fmt.Sprintf("math.Min(math.Max(%s, %s), %s)", args[0], args[1], args[2])
		}
	}
	if fn, ok := mathFunc[c.Name]; ok {
		return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}
