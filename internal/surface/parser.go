package surface

import (
	"fmt"
	"strconv"

	"gradx/internal/builtins"
	"gradx/internal/ir"
)

// Position locates a syntax error in source text, independent of
// internal/errors so this package never needs to import it (internal/
// errors imports this package instead, to add a ParseError case to
// errors.Wrap).
type Position struct {
	Line   int
	Column int
}

// ParseError is the parser's total failure mode: it either produces an
// ir.Function or reports the offending token and its position, never
// panics on malformed input.
type ParseError struct {
	Message  string
	Position Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("surface:%d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
}

// binaryPrecedence and rightAssoc mirror kanso/internal/parser/
// parser_pratt.go's climbing table, generalized to this language's
// smaller operator set.
var binaryPrecedence = map[string]int{
	"+": 1,
	"-": 1,
	"*": 2,
	"/": 2,
	"^": 3,
}

var rightAssoc = map[string]bool{"^": true}

// Parse parses one function definition — `fn name(params) -> expr` or
// `fn name(params) { let ...; return expr; }` — grounded on kanso/grammar/
// lexer.go for tokenization and kanso/internal/parser/parser_pratt.go for
// the expression-climbing shape. reg resolves composite built-in calls so
// bare vector-shaped arguments can be flattened into scalar components in
// call position: a bare vector-typed argument is expanded into its
// components.
func Parse(filename, source string, reg *builtins.Registry) (*ir.Function, error) {
	toks, err := tokenize(filename, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	p := &parser{toks: toks, reg: reg, env: make(map[string]ir.Shape)}
	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorAt(p.peek(), fmt.Sprintf("unexpected trailing input %q", p.peek().describe()))
	}
	return fn, nil
}

type parser struct {
	toks []token
	pos  int
	reg  *builtins.Registry
	env  map[string]ir.Shape
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atPunct(v string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.value == v
}

func (p *parser) atArrow() bool { return p.peek().kind == tokArrow }

func (p *parser) atIdentValue(v string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.value == v
}

func (p *parser) errorAt(t token, msg string) *ParseError {
	return &ParseError{Message: msg, Position: Position{Line: t.line, Column: t.col}}
}

func (p *parser) expectPunct(v string) (token, error) {
	t := p.peek()
	if t.kind != tokPunct || t.value != v {
		return token{}, p.errorAt(t, fmt.Sprintf("expected %q, found %q", v, t.describe()))
	}
	return p.advance(), nil
}

func (p *parser) expectOperator(v string) (token, error) {
	t := p.peek()
	if t.kind != tokOperator || t.value != v {
		return token{}, p.errorAt(t, fmt.Sprintf("expected %q, found %q", v, t.describe()))
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (string, token, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return "", t, p.errorAt(t, fmt.Sprintf("expected an identifier, found %q", t.describe()))
	}
	p.advance()
	return t.value, t, nil
}

func (p *parser) expectIdentValue(v string) (token, error) {
	t := p.peek()
	if t.kind != tokIdent || t.value != v {
		return token{}, p.errorAt(t, fmt.Sprintf("expected %q, found %q", v, t.describe()))
	}
	return p.advance(), nil
}

func (p *parser) parseFunction() (*ir.Function, error) {
	if _, err := p.expectIdentValue("fn"); err != nil {
		return nil, err
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var params []*ir.Parameter
	if !p.atPunct(")") {
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			p.env[param.Name] = param.Shape
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	var body []ir.Binding
	var ret ir.Expr
	switch {
	case p.atArrow():
		p.advance()
		ret, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	case p.atPunct("{"):
		p.advance()
		body, ret, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.errorAt(p.peek(), fmt.Sprintf(`expected "->" or "{" after function parameters, found %q`, p.peek().describe()))
	}

	return &ir.Function{Name: name, Params: params, Body: body, Return: ret}, nil
}

func (p *parser) parseParam() (*ir.Parameter, error) {
	diff := false
	if p.atIdentValue("diff") {
		p.advance()
		diff = true
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	shape, err := p.parseShape()
	if err != nil {
		return nil, err
	}
	return &ir.Parameter{Name: name, Shape: shape, Differentiable: diff}, nil
}

func (p *parser) parseShape() (ir.Shape, error) {
	name, tok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch name {
	case "scalar":
		return ir.ScalarShape{}, nil
	case "vec2":
		return ir.Vec2Shape{}, nil
	case "vec3":
		return ir.Vec3Shape{}, nil
	case "struct":
		if _, err := p.expectPunct("("); err != nil {
			return nil, err
		}
		var fields []string
		for {
			fname, _, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			fields = append(fields, fname)
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return ir.StructShape{Fields: fields}, nil
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("unknown parameter type %q (want scalar, vec2, vec3, or struct(field, ...))", name))
	}
}

func (p *parser) parseBlock() ([]ir.Binding, ir.Expr, error) {
	var bindings []ir.Binding
	for p.atIdentValue("let") {
		p.advance()
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expectOperator("="); err != nil {
			return nil, nil, err
		}
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, nil, err
		}
		bindings = append(bindings, ir.Binding{Name: name, Expr: expr})
		p.env[name] = ir.ScalarShape{}
	}
	if _, err := p.expectIdentValue("return"); err != nil {
		return nil, nil, err
	}
	ret, err := p.parseExpr(0)
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, nil, err
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, nil, err
	}
	return bindings, ret, nil
}

// parseExpr climbs binary operators by precedence, in the manner of
// kanso's parsePrattExpr(minPrec); "^" is right-associative, the rest
// left-associative.
func (p *parser) parseExpr(minPrec int) (ir.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOperator {
			break
		}
		prec, ok := binaryPrecedence[tok.value]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		nextMin := prec + 1
		if rightAssoc[tok.value] {
			nextMin = prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = ir.Bin(ir.BinaryOp(tok.value), left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (ir.Expr, error) {
	tok := p.peek()
	if tok.kind == tokOperator && tok.value == "-" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ir.Un(ir.Neg, operand), nil
	}
	if tok.kind == tokOperator && tok.value == "+" {
		// Unary plus is accepted and elided, per ir.UnaryOp's doc comment.
		p.advance()
		return p.parseUnary()
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ir.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.atPunct(".") {
		p.advance()
		field, tok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch e := expr.(type) {
		case *ir.Variable:
			shape, ok := p.env[e.Name]
			if !ok || !hasComponent(shape, field) {
				return nil, p.errorAt(tok, fmt.Sprintf("%q has no component %q", e.Name, field))
			}
			expr = ir.Var(e.Name + "." + field)
		case *ir.Call:
			// Field access on a composite built-in's result, e.g.
			// normalize2d(u).x; internal/inline expands this once the
			// call's entry resolves to an ExpandComponentFunc.
			expr = ir.Comp(e, field)
		default:
			return nil, p.errorAt(tok, fmt.Sprintf("cannot access component %q of this expression", field))
		}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (ir.Expr, error) {
	tok := p.peek()
	switch {
	case tok.kind == tokNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "malformed number literal "+tok.value)
		}
		return ir.Num(v), nil
	case tok.kind == tokPunct && tok.value == "(":
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case tok.kind == tokIdent:
		return p.parseIdentOrCall()
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("expected an expression, found %q", tok.describe()))
	}
}

func (p *parser) parseIdentOrCall() (ir.Expr, error) {
	nameTok := p.advance()
	name := nameTok.value

	if p.atPunct("(") {
		p.advance()
		var args []ir.Expr
		if !p.atPunct(")") {
			for {
				flat, err := p.parseCallArgument()
				if err != nil {
					return nil, err
				}
				args = append(args, flat...)
				if p.atPunct(",") {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return p.buildCall(name, args, nameTok)
	}

	if shape, known := p.env[name]; known {
		_, isScalar := shape.(ir.ScalarShape)
		if !isScalar && !p.atPunct(".") {
			return nil, p.errorAt(nameTok, fmt.Sprintf(
				"%q has shape %s; access a component (%s.%s) or pass it directly as a call argument",
				name, shape.String(), name, shape.Components()[0]))
		}
	}
	return ir.Var(name), nil
}

// parseCallArgument parses one call argument, flattening a bare
// vector-shaped identifier into its components when it is used directly
// as an argument rather than through field access. Every other
// expression form parses as a single scalar argument.
func (p *parser) parseCallArgument() ([]ir.Expr, error) {
	tok := p.peek()
	if tok.kind == tokIdent {
		if shape, ok := p.env[tok.value]; ok {
			next := p.peekAt(1)
			followedByField := next.kind == tokPunct && next.value == "."
			followedByCall := next.kind == tokPunct && next.value == "("
			if !followedByField && !followedByCall {
				p.advance()
				if _, isScalar := shape.(ir.ScalarShape); isScalar {
					return []ir.Expr{ir.Var(tok.value)}, nil
				}
				comps := shape.Components()
				out := make([]ir.Expr, len(comps))
				for i, c := range comps {
					out[i] = ir.Var(tok.value + "." + c)
				}
				return out, nil
			}
		}
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return []ir.Expr{expr}, nil
}

// buildCall validates args against the registered arity when name
// resolves to a built-in; an unrecognized name is passed through
// unchecked since it surfaces later as diff.MissingGradientError, a
// fatal configuration error with better context than the parser has.
func (p *parser) buildCall(name string, args []ir.Expr, tok token) (ir.Expr, error) {
	if entry, ok := p.reg.Lookup(name); ok {
		if len(args) != entry.Arity {
			return nil, p.errorAt(tok, fmt.Sprintf("%s takes %d argument(s), got %d", name, entry.Arity, len(args)))
		}
	}
	return ir.Fn(name, args...), nil
}

func hasComponent(shape ir.Shape, field string) bool {
	for _, c := range shape.Components() {
		if c == field {
			return true
		}
	}
	return false
}
