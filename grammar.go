package sqlitekit

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// This is a bespoke precedence-climbing grammar for spec.md §4.5's SELECT
// subset, built with github.com/alecthomas/participle/v2 the way
// FocuswithJustin-JuniperBible's core/ir/ref.go builds its OSIS-reference
// grammar: one struct per precedence level, each holding a left operand and
// a repeated (operator, right operand) tail, which keeps the six levels
// left-associative without participle needing any precedence-climbing
// support of its own. A generic SQL dialect (as xwb1989/sqlparser provides)
// would impose its own operator set and precedence; this custom grammar is
// used instead because spec.md's precedence chain and literal syntax
// (single-quoted text, no string escapes) don't match any such dialect
// cleanly.

// OrExpr is the entry point of the expression grammar (lowest precedence).
type OrExpr struct {
	Left *AndExpr `@@`
	Ops  []*OrOp  `@@*`
}

type OrOp struct {
	Op    string   `@"OR"`
	Right *AndExpr `@@`
}

type AndExpr struct {
	Left *EqExpr  `@@`
	Ops  []*AndOp `@@*`
}

type AndOp struct {
	Op    string  `@"AND"`
	Right *EqExpr `@@`
}

type EqExpr struct {
	Left *CmpExpr `@@`
	Ops  []*EqOp  `@@*`
}

type EqOp struct {
	Op    string   `@("=" | "==" | "<>" | "!=")`
	Right *CmpExpr `@@`
}

type CmpExpr struct {
	Left *AddExpr `@@`
	Ops  []*CmpOp `@@*`
}

type CmpOp struct {
	Op    string   `@("<=" | ">=" | "<" | ">")`
	Right *AddExpr `@@`
}

type AddExpr struct {
	Left *MulExpr `@@`
	Ops  []*AddOp `@@*`
}

type AddOp struct {
	Op    string   `@("+" | "-")`
	Right *MulExpr `@@`
}

type MulExpr struct {
	Left *Atom    `@@`
	Ops  []*MulOp `@@*`
}

type MulOp struct {
	Op    string `@("*" | "/")`
	Right *Atom  `@@`
}

// Atom is the grammar's highest-precedence production: literals,
// identifiers, and parenthesized subexpressions.
type Atom struct {
	Number *int64  `@Number`
	Text   *string `| @String`
	Ident  *string `| @Ident`
	Sub    *OrExpr `| "(" @@ ")"`
}

// SelectStmt is spec.md §4.5's SELECT grammar: either the literal
// `COUNT(*)` select list or a comma-separated expression list, a mandatory
// FROM clause, and an optional WHERE clause.
type SelectStmt struct {
	CountStar bool      `"SELECT" ( @("COUNT" "(" "*" ")")`
	Columns   []*OrExpr `| @@ ("," @@)* )`
	From      string    `"FROM" @Ident`
	Where     *OrExpr   `( "WHERE" @@ )?`
	_         string    `";"?`
}

var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `'[^']*'`},
	{Name: "LE", Pattern: `<=`},
	{Name: "GE", Pattern: `>=`},
	{Name: "NE", Pattern: `<>|!=`},
	{Name: "EQEQ", Pattern: `==`},
	{Name: "EQ", Pattern: `=`},
	{Name: "LT", Pattern: `<`},
	{Name: "GT", Pattern: `>`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Slash", Pattern: `/`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
})

var selectParser = participle.MustBuild[SelectStmt](
	participle.Lexer(sqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

var exprParser = participle.MustBuild[OrExpr](
	participle.Lexer(sqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

// ParseSelect parses a SELECT statement per spec.md §4.5. Failures are
// reported as ErrSyntax.
func ParseSelect(sql string) (*SelectStmt, error) {
	stmt, err := selectParser.ParseString("", sql)
	if err != nil {
		return nil, newError("parse_select", ErrSyntax, map[string]any{"sql": sql, "cause": err.Error()})
	}
	return stmt, nil
}

// ParseExpr parses a standalone expression, used by the tests and
// anywhere a WHERE clause needs parsing outside of a full statement.
func ParseExpr(s string) (*OrExpr, error) {
	expr, err := exprParser.ParseString("", s)
	if err != nil {
		return nil, newError("parse_expr", ErrSyntax, map[string]any{"expr": s, "cause": err.Error()})
	}
	return expr, nil
}

// textLiteral strips the surrounding single quotes off a lexed String
// token. The grammar's literals have no escape sequences (spec.md §4.5),
// so this is a plain trim rather than an unescaping pass.
func textLiteral(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}
