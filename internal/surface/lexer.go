// Package surface implements a small function-definition language: a
// `fn` header naming differentiable parameters, an optional block of
// `let` bindings, and a return expression. It
// produces ir.Function values directly — there is no separate externally
// visible AST, since this grammar is deliberately tiny next to kanso's
// full contract language.
//
// Tokenization is grounded on kanso/grammar/lexer.go's participle
// lexer.MustStateful rule table; precedence climbing over that token
// stream is grounded on kanso/internal/parser/parser_pratt.go's
// binaryPrecedence/parsePrattExpr shape, since operator precedence isn't
// naturally expressible as a participle grammar.
package surface

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// gxLexer tokenizes one source file into the token kinds the parser
// cares about: identifiers, numbers, the arrow, single-character
// operators/punctuation, and comments/whitespace (elided by the parser,
// not by the lexer, since this package reads the raw token stream
// directly instead of driving participle.Build).
var gxLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "DocComment", Pattern: `///[^\n]*`},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "Arrow", Pattern: `->`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?`},
		{Name: "Operator", Pattern: `[-+*/^=]`},
		{Name: "Punct", Pattern: `[(),:;{}.]`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

// tokKind names the token kinds the parser switches on, independent of
// the symbol ids participle assigns gxLexer's rules.
type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokArrow
	tokOperator
	tokPunct
)

// token is one lexed unit with its 1-indexed source position, the format
// surface.Position mirrors so a ParseError carries caret-ready context.
type token struct {
	kind  tokKind
	value string
	line  int
	col   int
}

// tokenize runs gxLexer over source and returns every non-trivia token
// plus a trailing tokEOF sentinel. Comments and whitespace are dropped
// here since nothing downstream of the parser ever wants them.
func tokenize(filename, source string) ([]token, error) {
	lex, err := gxLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	symbols := gxLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, id := range symbols {
		names[id] = name
	}

	var out []token
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if t.EOF() {
			out = append(out, token{kind: tokEOF, line: t.Pos.Line, col: t.Pos.Column})
			return out, nil
		}
		switch names[t.Type] {
		case "Whitespace", "Comment", "DocComment":
			continue
		case "Ident":
			out = append(out, token{kind: tokIdent, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		case "Number":
			out = append(out, token{kind: tokNumber, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		case "Arrow":
			out = append(out, token{kind: tokArrow, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		case "Operator":
			out = append(out, token{kind: tokOperator, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		case "Punct":
			out = append(out, token{kind: tokPunct, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		default:
			out = append(out, token{kind: tokPunct, value: t.Value, line: t.Pos.Line, col: t.Pos.Column})
		}
	}
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strings.TrimSpace(t.value)
}
