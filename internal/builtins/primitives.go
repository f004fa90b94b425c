package builtins

import "gradx/internal/ir"

// sign builds the symbolic sign(e) = abs(e) / e used by the non-smooth
// built-ins (abs, min, max, clamp): abs'(x)=sign(x), reported as
// abs(x)/x.
func sign(e ir.Expr) ir.Expr {
	return ir.Bin(ir.Div, ir.Fn("abs", e), e)
}

func half(e ir.Expr) ir.Expr {
	return ir.Bin(ir.Mul, ir.Num(0.5), e)
}

func primitiveEntries() []*Entry {
	var out []*Entry

	unary := func(name string, grad func(x ir.Expr) ir.Expr, disc *Discontinuity) {
		out = append(out, &Entry{
			Name:  name,
			Arity: 1,
			Gradient: func(args []ir.Expr) []ir.Expr {
				return []ir.Expr{grad(args[0])}
			},
			Discontinuity: disc,
		})
	}

	// sin'(x) = cos(x)
	unary("sin", func(x ir.Expr) ir.Expr { return ir.Fn("cos", x) }, nil)
	// cos'(x) = -sin(x)
	unary("cos", func(x ir.Expr) ir.Expr { return ir.Un(ir.Neg, ir.Fn("sin", x)) }, nil)
	// tan'(x) = 1/cos(x)^2
	unary("tan", func(x ir.Expr) ir.Expr {
		cx := ir.Fn("cos", x)
		return ir.Bin(ir.Div, ir.Num(1), ir.Bin(ir.Mul, cx, cx))
	}, nil)
	// asin'(x) = 1/sqrt(1-x^2)
	unary("asin", func(x ir.Expr) ir.Expr {
		return ir.Bin(ir.Div, ir.Num(1), ir.Fn("sqrt", ir.Bin(ir.Sub, ir.Num(1), ir.Bin(ir.Mul, x, x))))
	}, nil)
	// acos'(x) = -1/sqrt(1-x^2)
	unary("acos", func(x ir.Expr) ir.Expr {
		return ir.Un(ir.Neg, ir.Bin(ir.Div, ir.Num(1), ir.Fn("sqrt", ir.Bin(ir.Sub, ir.Num(1), ir.Bin(ir.Mul, x, x)))))
	}, nil)
	// atan'(x) = 1/(1+x^2)
	unary("atan", func(x ir.Expr) ir.Expr {
		return ir.Bin(ir.Div, ir.Num(1), ir.Bin(ir.Add, ir.Num(1), ir.Bin(ir.Mul, x, x)))
	}, nil)
	// exp'(x) = exp(x)
	unary("exp", func(x ir.Expr) ir.Expr { return ir.Fn("exp", x) }, nil)
	// log'(x) = 1/x
	unary("log", func(x ir.Expr) ir.Expr { return ir.Bin(ir.Div, ir.Num(1), x) }, nil)
	// sqrt'(x) = 1/(2*sqrt(x))
	unary("sqrt", func(x ir.Expr) ir.Expr {
		return ir.Bin(ir.Div, ir.Num(1), ir.Bin(ir.Mul, ir.Num(2), ir.Fn("sqrt", x)))
	}, nil)
	// abs'(x) = sign(x), reported as abs(x)/x
	unary("abs", func(x ir.Expr) ir.Expr { return sign(x) }, nil)

	// atan2(y, x): d/dy = x/(x²+y²), d/dx = -y/(x²+y²)
	out = append(out, &Entry{
		Name:  "atan2",
		Arity: 2,
		Gradient: func(args []ir.Expr) []ir.Expr {
			y, x := args[0], args[1]
			denom := ir.Bin(ir.Add, ir.Bin(ir.Mul, x, x), ir.Bin(ir.Mul, y, y))
			dy := ir.Bin(ir.Div, x, denom)
			dx := ir.Un(ir.Neg, ir.Bin(ir.Div, y, denom))
			return []ir.Expr{dy, dx}
		},
		Discontinuity: &Discontinuity{Description: "atan2 has a branch cut at x<0, y≈0"},
	})

	// pow(a,b): d/da = b*pow(a,b-1), d/db = pow(a,b)*log(a). The local
	// simplifier specializes this to the constant-exponent form when b is
	// a literal.
	out = append(out, &Entry{
		Name:  "pow",
		Arity: 2,
		Gradient: func(args []ir.Expr) []ir.Expr {
			a, b := args[0], args[1]
			da := ir.Bin(ir.Mul, b, ir.Fn("pow", a, ir.Bin(ir.Sub, b, ir.Num(1))))
			db := ir.Bin(ir.Mul, ir.Fn("pow", a, b), ir.Fn("log", a))
			return []ir.Expr{da, db}
		},
	})

	// max(a,b) = (a+b+abs(a-b))/2 algebraically, so
	// d/da = (1+sign(a-b))/2, d/db = (1-sign(a-b))/2.
	out = append(out, &Entry{
		Name:  "max",
		Arity: 2,
		Gradient: func(args []ir.Expr) []ir.Expr {
			a, b := args[0], args[1]
			s := sign(ir.Bin(ir.Sub, a, b))
			da := half(ir.Bin(ir.Add, ir.Num(1), s))
			db := half(ir.Bin(ir.Sub, ir.Num(1), s))
			return []ir.Expr{da, db}
		},
		Discontinuity: &Discontinuity{Description: "max is non-smooth where its arguments are equal"},
	})

	// min(a,b): the mirror image of max.
	out = append(out, &Entry{
		Name:  "min",
		Arity: 2,
		Gradient: func(args []ir.Expr) []ir.Expr {
			a, b := args[0], args[1]
			s := sign(ir.Bin(ir.Sub, a, b))
			da := half(ir.Bin(ir.Sub, ir.Num(1), s))
			db := half(ir.Bin(ir.Add, ir.Num(1), s))
			return []ir.Expr{da, db}
		},
		Discontinuity: &Discontinuity{Description: "min is non-smooth where its arguments are equal"},
	})

	// clamp(x, lo, hi) = min(max(x, lo), hi). Using the same indicator
	// trick: isBelow = (1-sign(x-lo))/2, isAbove = (1+sign(x-hi))/2.
	out = append(out, &Entry{
		Name:  "clamp",
		Arity: 3,
		Gradient: func(args []ir.Expr) []ir.Expr {
			x, lo, hi := args[0], args[1], args[2]
			isBelow := half(ir.Bin(ir.Sub, ir.Num(1), sign(ir.Bin(ir.Sub, x, lo))))
			isAbove := half(ir.Bin(ir.Add, ir.Num(1), sign(ir.Bin(ir.Sub, x, hi))))
			dx := ir.Bin(ir.Sub, ir.Bin(ir.Sub, ir.Num(1), isBelow), isAbove)
			return []ir.Expr{dx, isBelow, isAbove}
		},
		Discontinuity: &Discontinuity{Description: "clamp is non-smooth at its bounds"},
	})

	return out
}
