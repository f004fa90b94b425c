package surface

import (
	"strings"
	"testing"

	"gradx/internal/builtins"
	"gradx/internal/ir"
)

func TestParseArrowFunctionBuildsExpectedTree(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("f.gx", "fn f(diff x: scalar, diff y: scalar) -> x * x + y", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if fn.Name != "f" || len(fn.Params) != 2 {
		t.Fatalf("unexpected header: %+v", fn)
	}
	for _, p := range fn.Params {
		if !p.Differentiable {
			t.Fatalf("expected %s to be differentiable", p.Name)
		}
		if _, ok := p.Shape.(ir.ScalarShape); !ok {
			t.Fatalf("expected %s to be scalar, got %s", p.Name, p.Shape)
		}
	}

	want := ir.Bin(ir.Add, ir.Bin(ir.Mul, ir.Var("x"), ir.Var("x")), ir.Var("y"))
	if !ir.Equal(fn.Return, want) {
		t.Fatalf("got %s want %s", fn.Return, want)
	}
}

func TestParseBlockFunctionWithLetBindings(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("g.gx", "fn g(diff x: scalar) { let t = x * x; return t + 1; }", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(fn.Body) != 1 || fn.Body[0].Name != "t" {
		t.Fatalf("unexpected body: %+v", fn.Body)
	}
	wantBinding := ir.Bin(ir.Mul, ir.Var("x"), ir.Var("x"))
	if !ir.Equal(fn.Body[0].Expr, wantBinding) {
		t.Fatalf("binding: got %s want %s", fn.Body[0].Expr, wantBinding)
	}
	wantReturn := ir.Bin(ir.Add, ir.Var("t"), ir.Num(1))
	if !ir.Equal(fn.Return, wantReturn) {
		t.Fatalf("return: got %s want %s", fn.Return, wantReturn)
	}
}

func TestParseFlattensVectorArgumentsOfCompositeCall(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("h.gx", "fn h(diff u: vec2, diff v: vec2) -> dot2d(u, v)", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := ir.Fn("dot2d", ir.Var("u.x"), ir.Var("u.y"), ir.Var("v.x"), ir.Var("v.y"))
	if !ir.Equal(fn.Return, want) {
		t.Fatalf("got %s want %s", fn.Return, want)
	}
}

func TestParseComponentAccessOnCompositeResult(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("k.gx", "fn k(diff u: vec2) -> normalize2d(u).x", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := ir.Comp(ir.Fn("normalize2d", ir.Var("u.x"), ir.Var("u.y")), "x")
	if !ir.Equal(fn.Return, want) {
		t.Fatalf("got %s want %s", fn.Return, want)
	}
}

func TestParseStructParameterFieldAccess(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("m.gx", "fn m(diff p: struct(mass, charge)) -> p.mass * 2", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := ir.Bin(ir.Mul, ir.Var("p.mass"), ir.Num(2))
	if !ir.Equal(fn.Return, want) {
		t.Fatalf("got %s want %s", fn.Return, want)
	}
}

func TestParseRejectsBareVectorInScalarPosition(t *testing.T) {
	reg := builtins.NewRegistry()
	_, err := Parse("bad.gx", "fn bad(diff u: vec2) -> u + 1", reg)
	if err == nil {
		t.Fatal("expected an error using a bare vector parameter as a scalar")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
}

func TestParseRejectsWrongArityCall(t *testing.T) {
	reg := builtins.NewRegistry()
	_, err := Parse("bad.gx", "fn bad(diff u: vec2) -> dot2d(u)", reg)
	if err == nil {
		t.Fatal("expected an arity error for dot2d(u)")
	}
	if !strings.Contains(err.Error(), "dot2d") {
		t.Fatalf("expected error to name dot2d: %v", err)
	}
}

func TestParseReportsPositionOfOffendingToken(t *testing.T) {
	reg := builtins.NewRegistry()
	_, err := Parse("oops.gx", "fn f(diff x: scalar) -> x +", reg)
	if err == nil {
		t.Fatal("expected a parse error for a dangling operator")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
	if pe.Position.Line != 1 {
		t.Fatalf("expected line 1, got %d", pe.Position.Line)
	}
}

func TestParseRightAssociativePower(t *testing.T) {
	reg := builtins.NewRegistry()
	fn, err := Parse("pow.gx", "fn f(diff x: scalar) -> x ^ 2 ^ 3", reg)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := ir.Bin(ir.Pow, ir.Var("x"), ir.Bin(ir.Pow, ir.Num(2), ir.Num(3)))
	if !ir.Equal(fn.Return, want) {
		t.Fatalf("got %s want %s", fn.Return, want)
	}
}
