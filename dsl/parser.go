package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 线性数学记法，例如：
//
//	"area": abs(x + y)^2
//	diff(sin(t), t, 2); x_i = ${data.x}
//
// 语句之间以分号或换行分隔。
var (
	mathLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Placeholder", Pattern: `\$\{[^}\n]*\}`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[\p{L}][\p{L}\p{N}]*'*`},
		{Name: "Operator", Pattern: `<=|>=|!=|:=|->|[-+*/=<>:!.]`},
		{Name: "Symbol", Pattern: `[()^_;,]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(mathLexer),
		participle.Elide("Whitespace", "LineComment"),
		participle.UseLookahead(4),
	)
)

// Document is the root AST node: a sequence of statements.
type Document struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Statements []*Statement   `parser:"( ';' | Newline )* ( @@ ( ';' | Newline )* )*"`
}

// Statement is one expression with an optional "label": prefix.
type Statement struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Label *StringLiteral `parser:"( @String ':' )?"`
	Expr  *Expr          `parser:"@@"`
}

// Expr is a flat run of terms; operators and juxtaposition both chain.
type Expr struct {
	Terms []*Term `parser:"@@+"`
}

// Term is an operand with an optional leading operator.
type Term struct {
	Op    string   `parser:"@Operator?"`
	Value *Postfix `parser:"@@"`
}

// Postfix attaches an index and/or exponent to a primary.
type Postfix struct {
	Primary *Primary `parser:"@@"`
	Sub     *Primary `parser:"( '_' @@ )?"`
	Sup     *Primary `parser:"( '^' @@ )?"`
}

// Primary is an atom or a bracketed construct.
type Primary struct {
	Abs         *Expr          `parser:"  'abs' '(' @@ ')'"`
	Diff        *DiffCall      `parser:"| @@"`
	Call        *Call          `parser:"| @@"`
	Group       *Expr          `parser:"| '(' @@ ')'"`
	Number      *string        `parser:"| @Number"`
	Placeholder *string        `parser:"| @Placeholder"`
	Text        *StringLiteral `parser:"| @String"`
	Ident       *string        `parser:"| @Ident"`
}

// DiffCall is diff(expr, var[, order]).
type DiffCall struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Base  *Expr          `parser:"'diff' '(' @@"`
	Var   string         `parser:"',' @Ident"`
	Order int            `parser:"( ',' @Number )? ')'"`
}

// Call is a function application name(args...).
type Call struct {
	Name string  `parser:"@Ident '('"`
	Args []*Expr `parser:"( @@ ( ',' @@ )* )? ')'"`
}

// Kind returns a short description of the primary, used in diagnostics.
func (p *Primary) Kind() string {
	switch {
	case p == nil:
		return "unknown"
	case p.Abs != nil:
		return "abs"
	case p.Diff != nil:
		return "diff"
	case p.Call != nil:
		return "call"
	case p.Group != nil:
		return "group"
	case p.Number != nil:
		return "number"
	case p.Placeholder != nil:
		return "placeholder"
	case p.Text != nil:
		return "text"
	case p.Ident != nil:
		return "ident"
	default:
		return "unknown"
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses notation from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses notation from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
