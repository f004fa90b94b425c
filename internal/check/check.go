// Package check implements a finite-difference gradient verifier: for a
// compiled value and its analytic gradients, evaluate both the
// extracted expression and a numerical central-difference approximation
// at a sample point and compare within a relative tolerance. It is an
// ambient soundness check — nothing in the compiler pipeline itself
// imports it.
package check

import (
	"fmt"
	"math"

	"gradx/internal/ir"
	"gradx/internal/pipeline"
)

// DefaultTolerance is the default relative-error bound for gradient checks.
const DefaultTolerance = 1e-4

// DefaultStep is the central-difference step size used when a caller
// doesn't need a different one.
const DefaultStep = 1e-4

// Eval evaluates e against env, resolving temp references by looking
// them up in temps. It implements the same five arithmetic operators,
// unary negation, and primitive built-ins as the rest of the pipeline —
// a deliberately independent re-implementation of the semantics
// internal/diff differentiates symbolically, so this package can check
// the pipeline's output rather than merely restate it.
func Eval(e ir.Expr, env map[string]float64, temps map[string]ir.Expr) float64 {
	switch x := e.(type) {
	case *ir.Number:
		return x.Value
	case *ir.Variable:
		if body, ok := temps[x.Name]; ok {
			return Eval(body, env, temps)
		}
		v, ok := env[x.Name]
		if !ok {
			panic("check: unbound variable " + x.Name)
		}
		return v
	case *ir.Binary:
		l := Eval(x.Left, env, temps)
		r := Eval(x.Right, env, temps)
		switch x.Op {
		case ir.Add:
			return l + r
		case ir.Sub:
			return l - r
		case ir.Mul:
			return l * r
		case ir.Div:
			return l / r
		case ir.Pow:
			return math.Pow(l, r)
		default:
			panic("check: unhandled binary operator " + string(x.Op))
		}
	case *ir.Unary:
		v := Eval(x.Operand, env, temps)
		switch x.Op {
		case ir.Neg:
			return -v
		default:
			panic("check: unhandled unary operator " + string(x.Op))
		}
	case *ir.Call:
		return evalCall(x, env, temps)
	case *ir.Component:
		obj, ok := x.Object.(*ir.Variable)
		if !ok {
			panic(fmt.Sprintf("check: component access on non-variable carrier %T", x.Object))
		}
		key := obj.Name + "." + x.Field
		if body, ok := temps[key]; ok {
			return Eval(body, env, temps)
		}
		v, ok := env[key]
		if !ok {
			panic("check: unbound component " + key)
		}
		return v
	default:
		panic(fmt.Sprintf("check: unhandled Expr variant %T", e))
	}
}

func evalCall(c *ir.Call, env map[string]float64, temps map[string]ir.Expr) float64 {
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		args[i] = Eval(a, env, temps)
	}
	switch c.Name {
	case "sin":
		return math.Sin(args[0])
	case "cos":
		return math.Cos(args[0])
	case "tan":
		return math.Tan(args[0])
	case "asin":
		return math.Asin(args[0])
	case "acos":
		return math.Acos(args[0])
	case "atan":
		return math.Atan(args[0])
	case "atan2":
		return math.Atan2(args[0], args[1])
	case "exp":
		return math.Exp(args[0])
	case "log":
		return math.Log(args[0])
	case "sqrt":
		return math.Sqrt(args[0])
	case "abs":
		return math.Abs(args[0])
	case "pow":
		return math.Pow(args[0], args[1])
	case "max":
		return math.Max(args[0], args[1])
	case "min":
		return math.Min(args[0], args[1])
	case "clamp":
		return math.Min(math.Max(args[0], args[1]), args[2])
	default:
		panic("check: unrecognized built-in " + c.Name + " (composite calls must be expanded before reaching Eval)")
	}
}

// CentralDifference approximates d(eval)/d(env[name]) at env by evaluating
// eval at env[name]+h and env[name]-h and dividing by 2h.
func CentralDifference(eval func(map[string]float64) float64, env map[string]float64, name string, h float64) float64 {
	plus := cloneEnv(env)
	plus[name] += h
	minus := cloneEnv(env)
	minus[name] -= h
	return (eval(plus) - eval(minus)) / (2 * h)
}

func cloneEnv(env map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// RelativeError reports |got-want| / max(1, |want|), the scale-invariant
// comparison the default 1e-4 tolerance is stated in terms of.
func RelativeError(got, want float64) float64 {
	return math.Abs(got-want) / math.Max(1, math.Abs(want))
}

// Mismatch records one gradient component whose analytic and numerical
// values disagree beyond tolerance.
type Mismatch struct {
	Component string
	Analytic  float64
	Numerical float64
	RelError  float64
}

// Gradients verifies every component of res.Gradients against a central-
// difference approximation of res.Value at env, within tol relative
// error. It returns every mismatch found; a nil/empty result means the
// check passed.
func Gradients(res *pipeline.CompileResult, env map[string]float64, h, tol float64) []Mismatch {
	temps := make(map[string]ir.Expr, len(res.Temps))
	for _, t := range res.Temps {
		temps[t.Name] = t.Expr
	}
	evalValue := func(e map[string]float64) float64 { return Eval(res.Value, e, temps) }

	var mismatches []Mismatch
	for ref, expr := range res.Gradients {
		name := ref.VarName()
		analytic := Eval(expr, env, temps)
		numerical := CentralDifference(evalValue, env, name, h)
		rel := RelativeError(analytic, numerical)
		if rel > tol {
			mismatches = append(mismatches, Mismatch{
				Component: name, Analytic: analytic, Numerical: numerical, RelError: rel,
			})
		}
	}
	return mismatches
}
