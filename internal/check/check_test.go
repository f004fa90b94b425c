package check

import (
	"math"
	"testing"

	"gradx/internal/builtins"
	"gradx/internal/ir"
	"gradx/internal/pipeline"
)

func scalarFn(name string, body ir.Expr, paramNames ...string) *ir.Function {
	params := make([]*ir.Parameter, len(paramNames))
	for i, n := range paramNames {
		params[i] = &ir.Parameter{Name: n, Shape: ir.ScalarShape{}, Differentiable: true}
	}
	return &ir.Function{Name: name, Params: params, Return: body}
}

func TestEvalHandlesSinAddAndPow(t *testing.T) {
	env := map[string]float64{"x": 2, "y": 3}
	expr := ir.Bin(ir.Add,
		ir.Fn("sin", ir.Var("x")),
		ir.Bin(ir.Pow, ir.Var("y"), ir.Num(2)))
	got := Eval(expr, env, nil)
	want := math.Sin(2) + math.Pow(3, 2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRelativeErrorIsScaleInvariant(t *testing.T) {
	if RelativeError(1.00005, 1.0) > DefaultTolerance {
		t.Fatal("expected a 0.005% deviation at scale 1 to pass the default tolerance")
	}
	if RelativeError(1000.05, 1000) > DefaultTolerance {
		t.Fatal("expected a 0.005% deviation at scale 1000 to pass the default tolerance")
	}
}

func TestCentralDifferenceApproximatesKnownDerivative(t *testing.T) {
	f := func(env map[string]float64) float64 { return env["x"] * env["x"] }
	got := CentralDifference(f, map[string]float64{"x": 3}, "x", 1e-4)
	want := 6.0 // d/dx x^2 at x=3
	if RelativeError(got, want) > DefaultTolerance {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestGradientsPassesForSmoothPolynomial(t *testing.T) {
	reg := builtins.NewRegistry()
	fn := scalarFn("f", ir.Bin(ir.Add, ir.Bin(ir.Mul, ir.Var("x"), ir.Var("x")), ir.Fn("sin", ir.Var("y"))), "x", "y")

	res, err := pipeline.Compile(fn, reg, pipeline.Options{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	env := map[string]float64{"x": 1.7, "y": 0.4}
	mismatches := Gradients(res, env, DefaultStep, DefaultTolerance)
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %+v", mismatches)
	}
}

func TestGradientsCatchesAWrongAnalyticGradient(t *testing.T) {
	reg := builtins.NewRegistry()
	fn := scalarFn("f", ir.Bin(ir.Mul, ir.Var("x"), ir.Var("x")), "x")

	res, err := pipeline.Compile(fn, reg, pipeline.Options{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	// Corrupt the analytic gradient to verify Gradients actually detects
	// a disagreement instead of vacuously passing.
	for ref := range res.Gradients {
		res.Gradients[ref] = ir.Num(999)
	}

	env := map[string]float64{"x": 1.7}
	mismatches := Gradients(res, env, DefaultStep, DefaultTolerance)
	if len(mismatches) == 0 {
		t.Fatal("expected a mismatch after corrupting the analytic gradient")
	}
}
