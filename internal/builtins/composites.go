package builtins

import "gradx/internal/ir"

// Composite entries take flattened scalar arguments — the surface parser
// expands a bare vector-typed argument into its components in call
// position, using its own typing environment — and expand into pure
// arithmetic over primitives the first time the inliner walks past
// them. None of these names ever reach the differentiator directly.

func sq(e ir.Expr) ir.Expr { return ir.Bin(ir.Mul, e, e) }

func dot(args []ir.Expr) ir.Expr {
	n := len(args) / 2
	sum := ir.Expr(ir.Num(0))
	for i := 0; i < n; i++ {
		sum = ir.Bin(ir.Add, sum, ir.Bin(ir.Mul, args[i], args[n+i]))
	}
	return sum
}

func magnitudeSq(args []ir.Expr) ir.Expr {
	sum := ir.Expr(ir.Num(0))
	for _, a := range args {
		sum = ir.Bin(ir.Add, sum, sq(a))
	}
	return sum
}

func compositeEntries() []*Entry {
	var out []*Entry

	// dot2d(ax, ay, bx, by) = ax*bx + ay*by
	out = append(out, &Entry{
		Name: "dot2d", Arity: 4,
		Expand: func(args []ir.Expr) ir.Expr { return dot(args) },
	})
	// dot3d(ax, ay, az, bx, by, bz) = ax*bx + ay*by + az*bz
	out = append(out, &Entry{
		Name: "dot3d", Arity: 6,
		Expand: func(args []ir.Expr) ir.Expr { return dot(args) },
	})

	// cross2d(ax, ay, bx, by) = ax*by - ay*bx  (the 2D "perp dot product", a scalar)
	out = append(out, &Entry{
		Name: "cross2d", Arity: 4,
		Expand: func(args []ir.Expr) ir.Expr {
			ax, ay, bx, by := args[0], args[1], args[2], args[3]
			return ir.Bin(ir.Sub, ir.Bin(ir.Mul, ax, by), ir.Bin(ir.Mul, ay, bx))
		},
	})

	// cross3d(ax, ay, az, bx, by, bz) is a true vec3 cross product.
	out = append(out, &Entry{
		Name: "cross3d", Arity: 6, Fields: []string{"x", "y", "z"},
		ExpandComponent: func(args []ir.Expr, field string) ir.Expr {
			ax, ay, az, bx, by, bz := args[0], args[1], args[2], args[3], args[4], args[5]
			switch field {
			case "x":
				return ir.Bin(ir.Sub, ir.Bin(ir.Mul, ay, bz), ir.Bin(ir.Mul, az, by))
			case "y":
				return ir.Bin(ir.Sub, ir.Bin(ir.Mul, az, bx), ir.Bin(ir.Mul, ax, bz))
			case "z":
				return ir.Bin(ir.Sub, ir.Bin(ir.Mul, ax, by), ir.Bin(ir.Mul, ay, bx))
			default:
				panic("builtins: cross3d has no component " + field)
			}
		},
	})

	// magnitude2d/3d(...) = sqrt(sum of squares)
	out = append(out, &Entry{
		Name: "magnitude2d", Arity: 2,
		Expand: func(args []ir.Expr) ir.Expr { return ir.Fn("sqrt", magnitudeSq(args)) },
	})
	out = append(out, &Entry{
		Name: "magnitude3d", Arity: 3,
		Expand: func(args []ir.Expr) ir.Expr { return ir.Fn("sqrt", magnitudeSq(args)) },
	})

	// normalize2d/3d(...) = v / magnitude(v), componentwise.
	out = append(out, &Entry{
		Name: "normalize2d", Arity: 2, Fields: []string{"x", "y"},
		ExpandComponent: normalizeComponent,
	})
	out = append(out, &Entry{
		Name: "normalize3d", Arity: 3, Fields: []string{"x", "y", "z"},
		ExpandComponent: normalizeComponent,
	})

	// distance2d/3d(a, b) = magnitude(a - b)
	out = append(out, &Entry{
		Name: "distance2d", Arity: 4,
		Expand: func(args []ir.Expr) ir.Expr { return distance(args) },
	})
	out = append(out, &Entry{
		Name: "distance3d", Arity: 6,
		Expand: func(args []ir.Expr) ir.Expr { return distance(args) },
	})

	return out
}

func normalizeComponent(args []ir.Expr, field string) ir.Expr {
	mag := ir.Fn("sqrt", magnitudeSq(args))
	fields := []string{"x", "y", "z"}
	for i, f := range fields {
		if f == field && i < len(args) {
			return ir.Bin(ir.Div, args[i], mag)
		}
	}
	panic("builtins: normalize has no component " + field)
}

func distance(args []ir.Expr) ir.Expr {
	n := len(args) / 2
	diffs := make([]ir.Expr, n)
	for i := 0; i < n; i++ {
		diffs[i] = ir.Bin(ir.Sub, args[i], args[n+i])
	}
	return ir.Fn("sqrt", magnitudeSq(diffs))
}
