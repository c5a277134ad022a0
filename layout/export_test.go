package layout

import (
	"strings"
	"testing"
)

func TestSubSupExports(t *testing.T) {
	env := newTestEnv(t)
	ss := NewSubSup(env, txt(env, "x"))
	ss.SetExponent(num(env, "2"))

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"text", ss.String(), "x^2"},
		{"tex", ss.TeX(), "{x}^{2}"},
		{"mathml", ss.MathML(), "<msup><mrow><mi>x</mi></mrow><mrow><mn>2</mn></mrow></msup>"},
		{"omml", ss.OMML(), "<m:sSup><m:e><m:r><m:t>x</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup>"},
		{"matlab", ss.Matlab(), "x^2"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s export: got=%q want=%q", c.name, c.got, c.want)
		}
	}
}

func TestSubSupCompoundScriptsAreWrapped(t *testing.T) {
	env := newTestEnv(t)
	ss := NewSubSup(env, txt(env, "a"))
	ss.SetExponent(Chain(txt(env, "n"), op(env, "+"), num(env, "1")))
	ss.SetIndex(txt(env, "k"))
	if got, want := ss.String(), "a[k]^(n+1)"; got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
	if !strings.HasPrefix(ss.MathML(), "<msubsup>") {
		t.Fatalf("MathML = %q, want msubsup", ss.MathML())
	}

	ss.SetPreSup(num(env, "3"))
	if !strings.HasPrefix(ss.MathML(), "<mmultiscripts>") || !strings.Contains(ss.MathML(), "<mprescripts/>") {
		t.Fatalf("MathML with prescripts = %q", ss.MathML())
	}
	if !strings.HasPrefix(ss.OMML(), "<m:sPre>") {
		t.Fatalf("OMML with prescripts = %q", ss.OMML())
	}
	if got := ss.TeX(); !strings.HasPrefix(got, "{}^{3}{a}") {
		t.Fatalf("TeX with prescripts = %q", got)
	}
}

func TestAbsExports(t *testing.T) {
	env := newTestEnv(t)
	abs := NewAbs(env, txt(env, "x"))
	if got := abs.String(); got != "abs(x)" {
		t.Fatalf("String = %q", got)
	}
	if got := abs.TeX(); got != `\left| x\right| ` {
		t.Fatalf("TeX = %q", got)
	}
	if got := abs.MathML(); got != "<mrow><mo>|</mo><mi>x</mi><mo>|</mo></mrow>" {
		t.Fatalf("MathML = %q", got)
	}
	if got := abs.OMML(); !strings.Contains(got, `m:begChr="|"`) {
		t.Fatalf("OMML = %q", got)
	}
}

func TestDiffExports(t *testing.T) {
	env := newTestEnv(t)
	d := NewDiff(env, NewText(env, "f", StyleFunction), txt(env, "x"), 2)
	if got := d.String(); got != "'diff(f,x,2)" {
		t.Fatalf("String = %q", got)
	}
	if got := d.Matlab(); got != "diff(f,x,2)" {
		t.Fatalf("Matlab = %q", got)
	}
	if got := d.TeX(); got != `\frac{d^{2}}{d\,{x}^{2}}\left(\operatorname{f}\right) ` {
		t.Fatalf("TeX = %q", got)
	}
	if !strings.HasPrefix(d.MathML(), "<mrow><mfrac><msup><mi>d</mi><mn>2</mn></msup>") {
		t.Fatalf("MathML = %q", d.MathML())
	}
	if got := d.XML().SelectAttrValue("order", ""); got != "2" {
		t.Fatalf("order attribute = %q", got)
	}

	first := NewDiff(env, txt(env, "y"), txt(env, "t"), 1)
	if got := first.String(); got != "'diff(y,t)" {
		t.Fatalf("first order String = %q", got)
	}
	if first.XML().SelectAttr("order") != nil {
		t.Fatalf("first order derivative must not carry an order attribute")
	}
	RecalculateList(first, 12)
	RecalculateList(d, 12)
	// "d²/d" 比 "d/d" 多一个字符，再加上后缀 "²"。
	if got := d.Width() - first.Width(); !near(got, 3) {
		t.Fatalf("order 2 is %g wider than order 1, want 3", got)
	}
}

func TestTextStylesAndEscaping(t *testing.T) {
	env := newTestEnv(t)
	if got := op(env, "<").MathML(); got != "<mo>&lt;</mo>" {
		t.Fatalf("operator MathML = %q", got)
	}
	if got := op(env, "*").TeX(); got != `\cdot ` {
		t.Fatalf("operator TeX = %q", got)
	}
	if got := NewText(env, "a_b%", StyleDefault).TeX(); got != `a\_b\%` {
		t.Fatalf("escaped TeX = %q", got)
	}
	if got := NewText(env, "sin", StyleFunction).TeX(); got != `\operatorname{sin}` {
		t.Fatalf("function TeX = %q", got)
	}
}

func TestExportDocumentForms(t *testing.T) {
	env := newTestEnv(t)
	second := Chain(txt(env, "b"))
	second.SetForceBreakLine(true)
	head := Chain(NewValueGroup(env, txt(env, "a")), second)

	text, err := Export(head, FormatText)
	if err != nil {
		t.Fatalf("export text: %v", err)
	}
	if text != "(a)\nb" {
		t.Fatalf("text = %q", text)
	}
	mathml, _ := Export(head, FormatMathML)
	if !strings.HasPrefix(mathml, "<math ") || !strings.HasSuffix(mathml, "</math>") {
		t.Fatalf("mathml = %q", mathml)
	}
	xml, err := Export(head, FormatXML)
	if err != nil {
		t.Fatalf("export xml: %v", err)
	}
	for _, want := range []string{`<mathdoc version="1">`, "<p>", `<v breakline="true">b</v>`} {
		if !strings.Contains(xml, want) {
			t.Fatalf("xml missing %q:\n%s", want, xml)
		}
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" MathML ")
	if err != nil || f != FormatMathML {
		t.Fatalf("ParseFormat(MathML) = %v, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	for i := FormatText; i <= FormatXML; i++ {
		back, err := ParseFormat(i.String())
		if err != nil || back != i {
			t.Fatalf("format %d does not round-trip through its name", i)
		}
	}
}
