package layout

import "github.com/beevik/etree"

// AbsoluteValue 在内部表达式两侧画竖线：|inner|。
// open/close 两个 "|" 文本只在展开成多行时参与绘制。
type AbsoluteValue struct {
	Cell
	inner       Node
	open, close *TextRun
}

func NewAbs(env *Env, inner Node) *AbsoluteValue {
	a := &AbsoluteValue{}
	a.init(a, env)
	a.open = NewText(env, "|", StyleOperator)
	a.close = NewText(env, "|", StyleOperator)
	a.adopt(a.open)
	a.adopt(a.close)
	a.inner = a.adopt(inner)
	return a
}

func (a *AbsoluteValue) Kind() Kind         { return KindAbs }
func (a *AbsoluteValue) Inner() Node        { return a.inner }
func (a *AbsoluteValue) InnerCells() []Node { return []Node{a.open, a.inner, a.close} }

func (a *AbsoluteValue) SetInner(inner Node) {
	a.Unbreak()
	a.inner = a.adopt(inner)
	a.MarkDirty()
}

func (a *AbsoluteValue) Copy() Node {
	c := NewAbs(a.env, CopyList(a.inner))
	c.copyCommon(&a.Cell)
	return c
}

func (a *AbsoluteValue) RecalculateWidths(fontSize float64) {
	if !a.needsWidths(fontSize) {
		return
	}
	a.open.RecalculateWidths(fontSize)
	a.close.RecalculateWidths(fontSize)
	RecalculateWidthsList(a.inner, fontSize)
	if a.brokenIntoLines {
		a.width = 0
	} else {
		cfg := a.config()
		a.width = ListWidth(a.inner) + 8*cfg.Unit + 2*cfg.StrokeWidth
	}
	a.widthsDone(fontSize)
}

func (a *AbsoluteValue) RecalculateHeight(fontSize float64) {
	if !a.needsHeight(fontSize) {
		return
	}
	a.open.RecalculateHeight(fontSize)
	a.close.RecalculateHeight(fontSize)
	RecalculateHeightList(a.inner, fontSize)
	if a.brokenIntoLines {
		a.height, a.center = 0, 0
	} else {
		u := a.config().Unit
		a.height = ListMaxHeight(a.inner) + 4*u
		a.center = ListMaxCenter(a.inner) + 2*u
	}
	a.heightDone(fontSize)
}

func (a *AbsoluteValue) Draw(ctx *DrawContext, p Point) {
	if a.brokenIntoLines || !a.InUpdateRegion(ctx, p) {
		return
	}
	cfg := a.config()
	u, lw := cfg.Unit, cfg.StrokeWidth
	top := p.Y - a.center + 2*u
	bottom := p.Y - a.center + a.height - 2*u

	DrawList(a.inner, ctx, Point{X: p.X + 4*u + lw, Y: p.Y})
	left := p.X + 2*u + lw/2
	right := p.X + a.width - 2*u - lw/2
	ctx.Surface.DrawLine(left, top, left, bottom, lw)
	ctx.Surface.DrawLine(right, top, right, bottom, lw)
}

func (a *AbsoluteValue) BreakUp() bool { return a.breakInto(a.open, a.inner, a.close) }
func (a *AbsoluteValue) Unbreak()      { a.unbreakFrom(a.open, a.inner, a.close) }

func (a *AbsoluteValue) String() string {
	if a.brokenIntoLines {
		return ""
	}
	return "abs(" + ListToString(a.inner) + ")"
}

func (a *AbsoluteValue) TeX() string {
	if a.brokenIntoLines {
		return ""
	}
	return `\left| ` + ListToTeX(a.inner) + `\right| `
}

func (a *AbsoluteValue) MathML() string {
	if a.brokenIntoLines {
		return ""
	}
	return "<mrow><mo>|</mo>" + ListToMathML(a.inner) + "<mo>|</mo></mrow>"
}

func (a *AbsoluteValue) OMML() string {
	if a.brokenIntoLines {
		return ""
	}
	return `<m:d><m:dPr m:begChr="|" m:endChr="|"></m:dPr><m:e>` + ListToOMML(a.inner) + "</m:e></m:d>"
}

func (a *AbsoluteValue) Matlab() string {
	if a.brokenIntoLines {
		return ""
	}
	return "abs(" + ListToMatlab(a.inner) + ")"
}

func (a *AbsoluteValue) XML() *etree.Element {
	if a.brokenIntoLines {
		return nil
	}
	el := etree.NewElement("a")
	el.AddChild(ListXML("r", a.inner))
	return hintsXML(el, &a.Cell)
}
