package layout

import (
	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContainerGroup 是文档的结构单元：一段输入和它的输出，输出可以折叠。
// 外部调度器通过 ID、IsWorking、PlainText 与 MarkDirty 使用它。
type ContainerGroup struct {
	Cell
	id        uuid.UUID
	groupType GroupType

	input, output Node
	hide          bool
	working       bool

	inState, outState breakState
	inputHeight       float64
}

func NewGroup(env *Env, t GroupType, input Node) *ContainerGroup {
	g := &ContainerGroup{id: uuid.New(), groupType: t}
	g.init(g, env)
	g.input = g.adopt(input)
	return g
}

func (g *ContainerGroup) Kind() Kind         { return KindContainer }
func (g *ContainerGroup) ID() uuid.UUID      { return g.id }
func (g *ContainerGroup) SetID(id uuid.UUID) { g.id = id }
func (g *ContainerGroup) Type() GroupType    { return g.groupType }
func (g *ContainerGroup) Input() Node        { return g.input }
func (g *ContainerGroup) Output() Node       { return g.output }
func (g *ContainerGroup) InnerCells() []Node { return []Node{g.input, g.output} }
func (g *ContainerGroup) IsHidden() bool     { return g.hide }
func (g *ContainerGroup) IsWorking() bool    { return g.working }
func (g *ContainerGroup) SetWorking(v bool)  { g.working = v }
func (g *ContainerGroup) BreakUp() bool      { return false }
func (g *ContainerGroup) Unbreak()           { g.unbreakFrom() }
func (g *ContainerGroup) PlainText() string  { return ListToString(g.input) }
func (g *ContainerGroup) showsOutput() bool  { return g.output != nil && !g.hide }

// SetInput 替换输入链表。
func (g *ContainerGroup) SetInput(head Node) {
	g.input = g.adopt(head)
	g.inState.reset()
	g.MarkDirty()
}

func (g *ContainerGroup) AppendInput(head Node) {
	if g.input == nil {
		g.SetInput(head)
		return
	}
	Append(g.input, head)
}

// SetOutput 丢弃旧输出并挂上新的输出链表。
func (g *ContainerGroup) SetOutput(head Node) {
	g.discardOutput()
	g.output = g.adopt(head)
	g.MarkDirty()
}

func (g *ContainerGroup) AppendOutput(head Node) {
	if g.output == nil {
		g.SetOutput(head)
		return
	}
	Append(g.output, head)
}

// RemoveOutput 丢弃输出；没有输出时什么也不做。
func (g *ContainerGroup) RemoveOutput() {
	if g.output == nil {
		return
	}
	g.discardOutput()
	g.MarkDirty()
}

func (g *ContainerGroup) discardOutput() {
	for n := g.output; n != nil; n = n.Next() {
		n.cell().parent = nil
	}
	if g.output != nil && g.env != nil {
		g.env.log.Debug("Output discarded", zap.Stringer("group", g.id))
	}
	g.output = nil
	g.outState.reset()
}

// Hide 设置折叠状态，折叠后输出不参与测量与绘制。
func (g *ContainerGroup) Hide(hide bool) {
	if g.hide == hide {
		return
	}
	g.hide = hide
	g.MarkDirty()
}

// SwitchHide 切换折叠状态；没有输出的组不会被折叠。
func (g *ContainerGroup) SwitchHide() {
	if g.hide {
		g.Hide(false)
		return
	}
	if g.output != nil {
		g.Hide(true)
	}
}

func (g *ContainerGroup) Copy() Node {
	c := NewGroup(g.env, g.groupType, CopyList(g.input))
	c.output = c.adopt(CopyList(g.output))
	c.hide = g.hide
	c.copyCommon(&g.Cell)
	return c
}

// BreakLines 以 width 排版输入，以扣除缩进后的宽度排版输出；行结构变化时标脏。
func (g *ContainerGroup) BreakLines(width float64) {
	cfg := g.config()
	changed := false
	if g.input != nil {
		changed = g.inState.layout(g.input, width, cfg.FontSize)
	}
	if g.showsOutput() {
		w := width - cfg.Indent
		changed = g.outState.layout(g.output, w, cfg.FontSize) || changed
	}
	if changed {
		g.MarkDirty()
	}
}

func (g *ContainerGroup) RecalculateWidths(fontSize float64) {
	if !g.needsWidths(fontSize) {
		return
	}
	recalculateWidthsDraw(g.input, fontSize)
	w := linesWidth(Lines(g.input))
	if g.showsOutput() {
		recalculateWidthsDraw(g.output, fontSize)
		w = max(w, g.config().Indent+linesWidth(Lines(g.output)))
	}
	g.width = w
	g.widthsDone(fontSize)
}

func linesWidth(lines []Line) float64 {
	var w float64
	for _, ln := range lines {
		w = max(w, ln.Width)
	}
	return w
}

func (g *ContainerGroup) RecalculateHeight(fontSize float64) {
	if !g.needsHeight(fontSize) {
		return
	}
	recalculateHeightDraw(g.input, fontSize)
	in := Lines(g.input)
	g.inputHeight = 0
	g.center = 0
	if len(in) > 0 {
		g.inputHeight = linesExtent(g.input, in).Height
		g.center = in[0].Center
	}
	g.height = g.inputHeight
	if g.showsOutput() {
		recalculateHeightDraw(g.output, fontSize)
		out := Lines(g.output)
		if len(out) > 0 {
			if g.height > 0 {
				g.height += g.config().GroupSkip
			} else {
				g.center = out[0].Center
			}
			g.height += linesExtent(g.output, out).Height
		}
	}
	g.heightDone(fontSize)
}

func (g *ContainerGroup) Draw(ctx *DrawContext, p Point) {
	if !g.InUpdateRegion(ctx, p) {
		return
	}
	drawLines(g.input, p, ctx)
	if !g.showsOutput() {
		return
	}
	out := Lines(g.output)
	if len(out) == 0 {
		return
	}
	cfg := g.config()
	y := p.Y - g.center + g.inputHeight + out[0].Center
	if g.inputHeight > 0 {
		y += cfg.GroupSkip
	}
	drawLines(g.output, Point{X: p.X + cfg.Indent, Y: y}, ctx)
}

func (g *ContainerGroup) String() string {
	s := ListToString(g.input)
	if g.output != nil {
		s += "\n" + ListToString(g.output)
	}
	return s
}

func (g *ContainerGroup) Matlab() string {
	s := ListToMatlab(g.input)
	if g.output != nil {
		s += "\n" + ListToMatlab(g.output)
	}
	return s
}

func (g *ContainerGroup) TeX() string {
	var s string
	switch g.groupType {
	case GroupTitle:
		s = `\title{` + escapeTeX(g.PlainText()) + "}\n"
	case GroupSection:
		s = `\section{` + escapeTeX(g.PlainText()) + "}\n"
	case GroupSubsection:
		s = `\subsection{` + escapeTeX(g.PlainText()) + "}\n"
	case GroupText:
		s = escapeTeX(g.PlainText()) + "\n"
	default:
		s = "\\begin{verbatim}\n" + g.PlainText() + "\n\\end{verbatim}\n"
	}
	if g.output != nil {
		s += `\[` + ListToTeX(g.output) + "\\]\n"
	}
	return s
}

func (g *ContainerGroup) MathML() string {
	s := "<mtable><mtr><mtd>" + ListToMathML(g.input) + "</mtd></mtr>"
	if g.output != nil {
		s += "<mtr><mtd>" + ListToMathML(g.output) + "</mtd></mtr>"
	}
	return s + "</mtable>"
}

func (g *ContainerGroup) OMML() string {
	return ListToOMML(g.input) + ListToOMML(g.output)
}

func (g *ContainerGroup) XML() *etree.Element {
	el := etree.NewElement("cell")
	el.CreateAttr("type", g.groupType.String())
	el.CreateAttr("id", g.id.String())
	if g.hide {
		el.CreateAttr("hide", "true")
	}
	el.AddChild(ListXML("input", g.input))
	if g.output != nil {
		el.AddChild(ListXML("output", g.output))
	}
	return hintsXML(el, &g.Cell)
}
