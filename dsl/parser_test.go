package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/mathcell/dsl"
	"github.com/ByLCY/mathcell/layout"
)

const sampleNotation = `
// 第一条：带标签
"area": abs(x + y)^2
diff(sin(t), t, 2); x_i = ${data.x}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleNotation)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(doc.Statements))
	}

	first := doc.Statements[0]
	if first.Label == nil || string(*first.Label) != "area" {
		t.Fatalf("expected label area, got %v", first.Label)
	}
	if got := len(first.Expr.Terms); got != 1 {
		t.Fatalf("expected single term, got %d", got)
	}
	pf := first.Expr.Terms[0].Value
	if pf.Primary.Kind() != "abs" || pf.Sup == nil || *pf.Sup.Number != "2" {
		t.Fatalf("unexpected first term: kind=%s sup=%v", pf.Primary.Kind(), pf.Sup)
	}

	d := doc.Statements[1].Expr.Terms[0].Value.Primary.Diff
	if d == nil || d.Var != "t" || d.Order != 2 {
		t.Fatalf("unexpected diff: %+v", d)
	}
	if call := d.Base.Terms[0].Value.Primary.Call; call == nil || call.Name != "sin" || len(call.Args) != 1 {
		t.Fatalf("diff base should be a call to sin")
	}

	third := doc.Statements[2].Expr.Terms
	if len(third) != 2 || third[1].Op != "=" {
		t.Fatalf("expected x_i = placeholder, got %d terms", len(third))
	}
	if third[0].Value.Sub == nil || *third[0].Value.Sub.Ident != "i" {
		t.Fatalf("expected index i")
	}
	if ph := third[1].Value.Primary.Placeholder; ph == nil || *ph != "${data.x}" {
		t.Fatalf("expected placeholder, got %v", ph)
	}
}

func TestIdentifierNamedLikeKeyword(t *testing.T) {
	doc, err := dsl.ParseString("abs + diff")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	terms := doc.Statements[0].Expr.Terms
	if len(terms) != 2 || *terms[0].Value.Primary.Ident != "abs" || *terms[1].Value.Primary.Ident != "diff" {
		t.Fatalf("keywords without parentheses must parse as identifiers")
	}
}

func TestParseErrorsCarryPosition(t *testing.T) {
	_, err := dsl.ParseString("x + (y")
	if err == nil {
		t.Fatalf("expected error for unbalanced parenthesis")
	}
	if !strings.Contains(err.Error(), "1:") {
		t.Fatalf("error should carry a position: %v", err)
	}
}

func TestBuildChain(t *testing.T) {
	env := layout.NewEnv(nil, layout.DefaultConfig(), nil)
	head, err := dsl.Compile(sampleNotation, env)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	got := layout.ListToString(head)
	want := "area(abs(x+y))^2\n'diff(sin(t),t,2)\nx[i]=${data.x}"
	if got != want {
		t.Fatalf("text mismatch:\n got=%q\nwant=%q", got, want)
	}

	var forced, big int
	for _, n := range layout.Cells(head) {
		if n.ForceBreakLine() {
			forced++
		}
		if n.BigSkip() {
			big++
		}
	}
	if forced != 2 || big != 3 {
		t.Fatalf("expected 2 forced breaks and 3 big skips, got %d and %d", forced, big)
	}
	if head.Kind() != layout.KindText || head.(*layout.TextRun).Style() != layout.StyleLabel {
		t.Fatalf("statement label must become a label run")
	}
}

func TestBuildCallAndGroup(t *testing.T) {
	env := layout.NewEnv(nil, layout.DefaultConfig(), nil)
	head, err := dsl.Compile("f(a, b) * (1 - c)", env)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if got := layout.ListToString(head); got != "f(a,b)*(1-c)" {
		t.Fatalf("text = %q", got)
	}
	tex := layout.ListToTeX(head)
	if !strings.HasPrefix(tex, `\operatorname{f}\left( `) || !strings.Contains(tex, `\cdot `) {
		t.Fatalf("tex = %q", tex)
	}
}
