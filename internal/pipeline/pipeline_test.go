package pipeline

import (
	"math"
	"testing"

	"gradx/internal/builtins"
	"gradx/internal/ir"
)

// eval evaluates an extracted expression tree against a variable
// environment, resolving temp references by looking them up in temps —
// a minimal arithmetic interpreter good enough to check pipeline output
// numerically without depending on internal/check (a test-only package
// of its own).
func eval(e ir.Expr, env map[string]float64, temps map[string]ir.Expr) float64 {
	switch x := e.(type) {
	case *ir.Number:
		return x.Value
	case *ir.Variable:
		if body, ok := temps[x.Name]; ok {
			return eval(body, env, temps)
		}
		v, ok := env[x.Name]
		if !ok {
			panic("pipeline_test: unbound variable " + x.Name)
		}
		return v
	case *ir.Binary:
		l := eval(x.Left, env, temps)
		r := eval(x.Right, env, temps)
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
			panic("pipeline_test: unhandled binary op " + string(x.Op))
		}
	case *ir.Unary:
		v := eval(x.Operand, env, temps)
		switch x.Op {
		case ir.Neg:
			return -v
		default:
			panic("pipeline_test: unhandled unary op " + string(x.Op))
		}
	case *ir.Call:
		args := make([]float64, len(x.Args))
		for i, a := range x.Args {
			args[i] = eval(a, env, temps)
		}
		switch x.Name {
		case "sin":
			return math.Sin(args[0])
		case "cos":
			return math.Cos(args[0])
		case "sqrt":
			return math.Sqrt(args[0])
		case "log":
			return math.Log(args[0])
		case "exp":
			return math.Exp(args[0])
		default:
			panic("pipeline_test: unhandled call " + x.Name)
		}
	default:
		panic("pipeline_test: unhandled Expr variant")
	}
}

func scalarFn(name string, body ir.Expr, paramNames ...string) *ir.Function {
	params := make([]*ir.Parameter, len(paramNames))
	for i, n := range paramNames {
		params[i] = &ir.Parameter{Name: n, Shape: ir.ScalarShape{}, Differentiable: true}
	}
	return &ir.Function{Name: name, Params: params, Return: body}
}

func TestCompileProducesCorrectValueAndGradients(t *testing.T) {
	reg := builtins.NewRegistry()
	// f(x, y) = x*x + y
	fn := scalarFn("f", ir.Bin(ir.Add, ir.Bin(ir.Mul, ir.Var("x"), ir.Var("x")), ir.Var("y")), "x", "y")

	res, err := Compile(fn, reg, Options{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a non-empty run id")
	}

	temps := make(map[string]ir.Expr, len(res.Temps))
	for _, tp := range res.Temps {
		temps[tp.Name] = tp.Expr
	}

	env := map[string]float64{"x": 3, "y": 5}
	gotValue := eval(res.Value, env, temps)
	wantValue := 3.0*3.0 + 5.0
	if math.Abs(gotValue-wantValue) > 1e-9 {
		t.Fatalf("value: got %v want %v", gotValue, wantValue)
	}

	for ref, expr := range res.Gradients {
		got := eval(expr, env, temps)
		var want float64
		switch ref.VarName() {
		case "x":
			want = 2 * env["x"] // d/dx (x^2 + y) = 2x
		case "y":
			want = 1 // d/dy (x^2 + y) = 1
		default:
			t.Fatalf("unexpected gradient component %s", ref.VarName())
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("gradient %s: got %v want %v", ref.VarName(), got, want)
		}
	}
	if len(res.Gradients) != 2 {
		t.Fatalf("expected 2 gradient components, got %d", len(res.Gradients))
	}
}

func TestCompileSurfacesDiscontinuityAdvisory(t *testing.T) {
	reg := builtins.NewRegistry()
	// f(x, y) = max(x, y)
	fn := scalarFn("f", ir.Fn("max", ir.Var("x"), ir.Var("y")), "x", "y")

	res, err := Compile(fn, reg, Options{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	found := false
	for _, a := range res.Advisories {
		if a.Code == "W1800" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a discontinuity advisory for max(), got %v", res.Advisories)
	}
}

func TestCompilePropagatesMissingGradientError(t *testing.T) {
	reg := builtins.NewRegistry()
	fn := scalarFn("f", ir.Fn("not_a_real_builtin", ir.Var("x")), "x")

	_, err := Compile(fn, reg, Options{})
	if err == nil {
		t.Fatal("expected an error for an unregistered built-in")
	}
}
