package layout

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Derivative 表示 d/dx 形式的导数：运算符、求导变量列表与被求导表达式并排排版。
type Derivative struct {
	Cell
	diff, base Node
	order      int

	op, post *TextRun
}

// NewDiff 创建导数节点；order 小于 1 时按 1 处理。
func NewDiff(env *Env, base, diff Node, order int) *Derivative {
	d := &Derivative{}
	d.init(d, env)
	d.base = d.adopt(base)
	d.diff = d.adopt(diff)
	d.setOrder(order)
	return d
}

func (d *Derivative) Kind() Kind { return KindDiff }
func (d *Derivative) Base() Node { return d.base }
func (d *Derivative) Diff() Node { return d.diff }
func (d *Derivative) Order() int { return d.order }

// InnerCells 按水平顺序返回运算符、求导变量、阶数上标（如有）与被求导表达式。
func (d *Derivative) InnerCells() []Node { return d.parts() }

func (d *Derivative) setOrder(order int) {
	d.order = max(order, 1)
	op := "d/d"
	d.post = nil
	if d.order > 1 {
		op = "d" + superscript(d.order) + "/d"
		d.post = NewText(d.env, superscript(d.order), StyleNumber)
		d.adopt(d.post)
	}
	d.op = NewText(d.env, op, StyleOperator)
	d.adopt(d.op)
}

func (d *Derivative) SetOrder(order int) {
	d.Unbreak()
	d.setOrder(order)
	d.MarkDirty()
}

func (d *Derivative) SetBase(head Node) {
	d.Unbreak()
	d.base = d.adopt(head)
	d.MarkDirty()
}

func (d *Derivative) SetDiff(head Node) {
	d.Unbreak()
	d.diff = d.adopt(head)
	d.MarkDirty()
}

func (d *Derivative) Copy() Node {
	c := NewDiff(d.env, CopyList(d.base), CopyList(d.diff), d.order)
	c.copyCommon(&d.Cell)
	return c
}

// parts 返回水平排列的各段，与 BreakUp 拼接的顺序一致。
func (d *Derivative) parts() []Node {
	parts := []Node{d.op, d.diff}
	if d.post != nil {
		parts = append(parts, d.post)
	}
	return append(parts, d.base)
}

func (d *Derivative) RecalculateWidths(fontSize float64) {
	if !d.needsWidths(fontSize) {
		return
	}
	var w float64
	for _, head := range d.parts() {
		RecalculateWidthsList(head, fontSize)
		w += ListWidth(head)
	}
	if d.brokenIntoLines {
		w = 0
	}
	d.width = w
	d.widthsDone(fontSize)
}

func (d *Derivative) RecalculateHeight(fontSize float64) {
	if !d.needsHeight(fontSize) {
		return
	}
	var center, drop float64
	for _, head := range d.parts() {
		RecalculateHeightList(head, fontSize)
		center = max(center, ListMaxCenter(head))
		drop = max(drop, ListMaxDrop(head))
	}
	if d.brokenIntoLines {
		center, drop = 0, 0
	}
	d.center = center
	d.height = center + drop
	d.heightDone(fontSize)
}

func (d *Derivative) Draw(ctx *DrawContext, p Point) {
	if d.brokenIntoLines || !d.InUpdateRegion(ctx, p) {
		return
	}
	for _, head := range d.parts() {
		DrawList(head, ctx, p)
		p.X += ListWidth(head)
	}
}

func (d *Derivative) BreakUp() bool { return d.breakInto(d.parts()...) }
func (d *Derivative) Unbreak()      { d.unbreakFrom(d.parts()...) }

func (d *Derivative) orderSuffix(sep string) string {
	if d.order > 1 {
		return sep + strconv.Itoa(d.order)
	}
	return ""
}

func (d *Derivative) String() string {
	if d.brokenIntoLines {
		return ""
	}
	return "'diff(" + ListToString(d.base) + "," + ListToString(d.diff) + d.orderSuffix(",") + ")"
}

func (d *Derivative) Matlab() string {
	if d.brokenIntoLines {
		return ""
	}
	return "diff(" + ListToMatlab(d.base) + "," + ListToMatlab(d.diff) + d.orderSuffix(",") + ")"
}

func (d *Derivative) TeX() string {
	if d.brokenIntoLines {
		return ""
	}
	num, den := "d", `d\,`+ListToTeX(d.diff)
	if d.order > 1 {
		n := strconv.Itoa(d.order)
		num = "d^{" + n + "}"
		den = `d\,{` + ListToTeX(d.diff) + "}^{" + n + "}"
	}
	return `\frac{` + num + "}{" + den + `}\left(` + ListToTeX(d.base) + `\right) `
}

func (d *Derivative) MathML() string {
	if d.brokenIntoLines {
		return ""
	}
	num, den := "<mi>d</mi>", "<mrow><mi>d</mi>"+ListToMathML(d.diff)+"</mrow>"
	if d.order > 1 {
		n := "<mn>" + strconv.Itoa(d.order) + "</mn>"
		num = "<msup><mi>d</mi>" + n + "</msup>"
		den = "<mrow><mi>d</mi><msup>" + mrow(d.diff) + n + "</msup></mrow>"
	}
	return "<mrow><mfrac>" + num + den + "</mfrac>" + mrow(d.base) + "</mrow>"
}

func (d *Derivative) OMML() string {
	if d.brokenIntoLines {
		return ""
	}
	num, den := "<m:r><m:t>d</m:t></m:r>", "<m:r><m:t>d</m:t></m:r>"+ListToOMML(d.diff)
	if d.order > 1 {
		n := "<m:sup><m:r><m:t>" + strconv.Itoa(d.order) + "</m:t></m:r></m:sup>"
		num = "<m:sSup><m:e><m:r><m:t>d</m:t></m:r></m:e>" + n + "</m:sSup>"
		den = "<m:r><m:t>d</m:t></m:r><m:sSup><m:e>" + ListToOMML(d.diff) + "</m:e>" + n + "</m:sSup>"
	}
	return "<m:f><m:num>" + num + "</m:num><m:den>" + den + "</m:den></m:f>" + ListToOMML(d.base)
}

func (d *Derivative) XML() *etree.Element {
	if d.brokenIntoLines {
		return nil
	}
	el := etree.NewElement("d")
	if d.order > 1 {
		el.CreateAttr("order", strconv.Itoa(d.order))
	}
	for _, r := range []*etree.Element{slotXML("diff", d.diff), slotXML("base", d.base)} {
		if r != nil {
			el.AddChild(r)
		}
	}
	return hintsXML(el, &d.Cell)
}

var superscriptDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(n int) string {
	var sb strings.Builder
	for _, r := range strconv.Itoa(n) {
		sb.WriteRune(superscriptDigits[r-'0'])
	}
	return sb.String()
}
