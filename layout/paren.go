package layout

import "github.com/beevik/etree"

// ValueGroup 是带圆括号的分组：( inner )。
type ValueGroup struct {
	Cell
	inner       Node
	open, close *TextRun
}

func NewValueGroup(env *Env, inner Node) *ValueGroup {
	g := &ValueGroup{}
	g.init(g, env)
	g.open = NewText(env, "(", StyleOperator)
	g.close = NewText(env, ")", StyleOperator)
	g.adopt(g.open)
	g.adopt(g.close)
	g.inner = g.adopt(inner)
	return g
}

func (g *ValueGroup) Kind() Kind         { return KindValueGroup }
func (g *ValueGroup) Inner() Node        { return g.inner }
func (g *ValueGroup) InnerCells() []Node { return []Node{g.open, g.inner, g.close} }

// SetInner 替换括号内的表达式，旧链表被丢弃。
func (g *ValueGroup) SetInner(inner Node) {
	g.Unbreak()
	g.inner = g.adopt(inner)
	g.MarkDirty()
}

func (g *ValueGroup) Copy() Node {
	c := NewValueGroup(g.env, CopyList(g.inner))
	c.copyCommon(&g.Cell)
	return c
}

func (g *ValueGroup) RecalculateWidths(fontSize float64) {
	if !g.needsWidths(fontSize) {
		return
	}
	g.open.RecalculateWidths(fontSize)
	g.close.RecalculateWidths(fontSize)
	RecalculateWidthsList(g.inner, fontSize)
	if g.brokenIntoLines {
		g.width = 0
	} else {
		g.width = g.open.Width() + ListWidth(g.inner) + g.close.Width()
	}
	g.widthsDone(fontSize)
}

func (g *ValueGroup) RecalculateHeight(fontSize float64) {
	if !g.needsHeight(fontSize) {
		return
	}
	g.open.RecalculateHeight(fontSize)
	g.close.RecalculateHeight(fontSize)
	RecalculateHeightList(g.inner, fontSize)
	if g.brokenIntoLines {
		g.height, g.center = 0, 0
	} else {
		g.center = max(g.open.Center(), ListMaxCenter(g.inner))
		g.height = g.center + max(g.open.Drop(), ListMaxDrop(g.inner))
	}
	g.heightDone(fontSize)
}

func (g *ValueGroup) Draw(ctx *DrawContext, p Point) {
	if g.brokenIntoLines || !g.InUpdateRegion(ctx, p) {
		return
	}
	g.open.Draw(ctx, p)
	p.X += g.open.Width()
	DrawList(g.inner, ctx, p)
	p.X += ListWidth(g.inner)
	g.close.Draw(ctx, p)
}

func (g *ValueGroup) BreakUp() bool { return g.breakInto(g.open, g.inner, g.close) }
func (g *ValueGroup) Unbreak()      { g.unbreakFrom(g.open, g.inner, g.close) }

func (g *ValueGroup) String() string {
	if g.brokenIntoLines {
		return ""
	}
	return "(" + ListToString(g.inner) + ")"
}

func (g *ValueGroup) TeX() string {
	if g.brokenIntoLines {
		return ""
	}
	return `\left( ` + ListToTeX(g.inner) + `\right) `
}

func (g *ValueGroup) MathML() string {
	if g.brokenIntoLines {
		return ""
	}
	return "<mrow><mo>(</mo>" + ListToMathML(g.inner) + "<mo>)</mo></mrow>"
}

func (g *ValueGroup) OMML() string {
	if g.brokenIntoLines {
		return ""
	}
	return `<m:d><m:dPr m:begChr="(" m:endChr=")"></m:dPr><m:e>` + ListToOMML(g.inner) + "</m:e></m:d>"
}

func (g *ValueGroup) Matlab() string {
	if g.brokenIntoLines {
		return ""
	}
	return "(" + ListToMatlab(g.inner) + ")"
}

func (g *ValueGroup) XML() *etree.Element {
	if g.brokenIntoLines {
		return nil
	}
	el := etree.NewElement("p")
	el.AddChild(ListXML("r", g.inner))
	return hintsXML(el, &g.Cell)
}
