package layout

import (
	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"
)

// TextRun 是最基本的叶子节点：一段同一样式的文本。
type TextRun struct {
	Cell
	text     string
	style    TextStyle
	fontSize float64
}

// NewText 创建文本节点，内容会做 NFC 规范化。
func NewText(env *Env, text string, style TextStyle) *TextRun {
	t := &TextRun{text: norm.NFC.String(text), style: style}
	t.init(t, env)
	return t
}

func (t *TextRun) Kind() Kind         { return KindText }
func (t *TextRun) InnerCells() []Node { return nil }
func (t *TextRun) Text() string       { return t.text }
func (t *TextRun) Style() TextStyle   { return t.style }
func (t *TextRun) FontSize() float64  { return t.fontSize }
func (t *TextRun) BreakUp() bool      { return false }
func (t *TextRun) Unbreak()           { t.breakLine = false }
func (t *TextRun) Copy() Node         { return t.copyRun() }
func (t *TextRun) Matlab() string     { return t.text }

func (t *TextRun) copyRun() *TextRun {
	c := NewText(t.env, t.text, t.style)
	c.copyCommon(&t.Cell)
	return c
}

func (t *TextRun) SetStyle(s TextStyle) {
	if s != t.style {
		t.style = s
		t.MarkDirty()
	}
}

// SetText 替换文本内容并把自身与祖先标脏。
func (t *TextRun) SetText(text string) {
	text = norm.NFC.String(text)
	if text == t.text {
		return
	}
	t.text = text
	t.MarkDirty()
}

func (t *TextRun) RecalculateWidths(fontSize float64) {
	if !t.needsWidths(fontSize) {
		return
	}
	t.fontSize = fontSize
	t.width = t.env.textWidth(t.text, t.style, fontSize)
	t.widthsDone(fontSize)
}

func (t *TextRun) RecalculateHeight(fontSize float64) {
	if !t.needsHeight(fontSize) {
		return
	}
	ascent, descent := t.env.metrics(t.style, fontSize)
	t.center = ascent
	t.height = ascent + descent
	t.heightDone(fontSize)
}

func (t *TextRun) Draw(ctx *DrawContext, p Point) {
	if t.text == "" || !t.InUpdateRegion(ctx, p) {
		return
	}
	ctx.Surface.DrawText(p.X, p.Y, t.text, t.style, t.fontSize)
}

func (t *TextRun) String() string { return t.text }

func (t *TextRun) TeX() string {
	switch t.style {
	case StyleFunction:
		return `\operatorname{` + escapeTeX(t.text) + `}`
	case StyleLabel:
		return `\mbox{` + escapeTeX(t.text) + `} `
	case StyleOperator:
		switch t.text {
		case "*":
			return `\cdot `
		case "<=":
			return `\leq `
		case ">=":
			return `\geq `
		}
	}
	return escapeTeX(t.text)
}

func (t *TextRun) MathML() string {
	tag := "mi"
	switch t.style {
	case StyleNumber:
		tag = "mn"
	case StyleOperator:
		tag = "mo"
	case StyleLabel:
		tag = "mtext"
	}
	return "<" + tag + ">" + escapeMarkup(t.text) + "</" + tag + ">"
}

func (t *TextRun) OMML() string {
	return "<m:r><m:t>" + escapeMarkup(t.text) + "</m:t></m:r>"
}

// textTags 是 TextRun 各样式在持久化 XML 中的标签。
var textTags = map[TextStyle]string{
	StyleDefault:  "t",
	StyleVariable: "v",
	StyleNumber:   "n",
	StyleFunction: "fnm",
	StyleOperator: "o",
	StyleLabel:    "lbl",
}

// TextStyleForTag 是 textTags 的反查，ok 为 false 表示不是文本标签。
func TextStyleForTag(tag string) (TextStyle, bool) {
	for s, name := range textTags {
		if name == tag {
			return s, true
		}
	}
	return StyleDefault, false
}

func (t *TextRun) XML() *etree.Element {
	el := etree.NewElement(textTags[t.style])
	el.SetText(t.text)
	return hintsXML(el, &t.Cell)
}
