package layout

import "github.com/beevik/etree"

// Node 是排版原语的统一契约。具体类型是封闭集合（见 Kind），
// 所有实现都内嵌 Cell 以共享链表、脏标记与几何缓存。
type Node interface {
	Kind() Kind
	Env() *Env

	// InnerCells 返回节点独占的子链表头，顺序固定；复制、脏标记传播与销毁都依赖它。
	InnerCells() []Node

	RecalculateWidths(fontSize float64)
	RecalculateHeight(fontSize float64)
	Draw(ctx *DrawContext, p Point)

	String() string
	TeX() string
	MathML() string
	OMML() string
	Matlab() string
	XML() *etree.Element

	BreakUp() bool
	Unbreak()
	Copy() Node

	Parent() Node
	Next() Node
	Previous() Node
	NextToDraw() Node
	PreviousToDraw() Node

	Width() float64
	Height() float64
	Center() float64
	Drop() float64

	IsBrokenIntoLines() bool
	BreakLine() bool
	ForceBreakLine() bool
	SetForceBreakLine(bool)
	BigSkip() bool
	SetBigSkip(bool)
	MarkDirty()

	cell() *Cell
}

// stamp 记录一次宽或高计算时的输入，任一输入变化即视为缓存失效。
type stamp struct {
	valid      bool
	fontSize   float64
	generation uint64
}

// Cell 是所有节点共享的基础状态。
//
// parent 只是弱引用：节点只拥有 InnerCells 返回的子链表。
// next/prev 是逻辑阅读顺序，nextToDraw/prevToDraw 是换行器可改写的绘制顺序，
// 二者都只是视图链接，不代表所有权。
type Cell struct {
	self Node
	env  *Env

	parent     Node
	next, prev Node

	nextToDraw, prevToDraw Node
	// drawSuccessor 保存 BreakUp 之前的绘制后继，Unbreak 时恢复。
	drawSuccessor Node

	width, height, center float64
	widthStamp            stamp
	heightStamp           stamp

	// lines 只在顶层链表头上使用，记录 Engine.Layout 上次断行的条件。
	lines breakState

	brokenIntoLines bool
	breakLine       bool
	forceBreakLine  bool
	bigSkip         bool
}

func (c *Cell) init(self Node, env *Env) {
	c.self = self
	c.env = env
}

func (c *Cell) cell() *Cell { return c }

func (c *Cell) Env() *Env               { return c.env }
func (c *Cell) Parent() Node            { return c.parent }
func (c *Cell) Next() Node              { return c.next }
func (c *Cell) Previous() Node          { return c.prev }
func (c *Cell) NextToDraw() Node        { return c.nextToDraw }
func (c *Cell) PreviousToDraw() Node    { return c.prevToDraw }
func (c *Cell) Width() float64          { return c.width }
func (c *Cell) Height() float64         { return c.height }
func (c *Cell) Center() float64         { return c.center }
func (c *Cell) Drop() float64           { return c.height - c.center }
func (c *Cell) IsBrokenIntoLines() bool { return c.brokenIntoLines }
func (c *Cell) BreakLine() bool         { return c.breakLine }
func (c *Cell) ForceBreakLine() bool    { return c.forceBreakLine }
func (c *Cell) BigSkip() bool           { return c.bigSkip }

func (c *Cell) SetForceBreakLine(v bool) {
	if c.forceBreakLine != v {
		c.forceBreakLine = v
		c.MarkDirty()
	}
}

func (c *Cell) SetBigSkip(v bool) {
	if c.bigSkip != v {
		c.bigSkip = v
		c.MarkDirty()
	}
}

// MarkDirty 标记自身与所有逻辑祖先需要重算。
func (c *Cell) MarkDirty() {
	for n := c; n != nil; {
		n.widthStamp.valid = false
		n.heightStamp.valid = false
		if n.parent == nil {
			return
		}
		n = n.parent.cell()
	}
}

// needsWidths 在缓存有效时返回 false，调用方应立即返回。
func (c *Cell) needsWidths(fontSize float64) bool {
	return !c.stampValid(c.widthStamp, fontSize)
}

func (c *Cell) needsHeight(fontSize float64) bool {
	return !c.stampValid(c.heightStamp, fontSize)
}

func (c *Cell) stampValid(s stamp, fontSize float64) bool {
	if !s.valid || s.fontSize != fontSize {
		return false
	}
	return c.env == nil || s.generation == c.env.generation
}

func (c *Cell) widthsDone(fontSize float64) {
	c.widthStamp = c.newStamp(fontSize)
	if c.env != nil {
		c.env.recalcs++
	}
}

func (c *Cell) heightDone(fontSize float64) {
	c.heightStamp = c.newStamp(fontSize)
	if c.env != nil {
		c.env.recalcs++
	}
}

func (c *Cell) newStamp(fontSize float64) stamp {
	s := stamp{valid: true, fontSize: fontSize}
	if c.env != nil {
		s.generation = c.env.generation
	}
	return s
}

func (c *Cell) config() Config {
	if c.env == nil {
		return DefaultConfig()
	}
	return c.env.cfg
}

// InUpdateRegion 判断节点包围盒是否与更新区域相交。
func (c *Cell) InUpdateRegion(ctx *DrawContext, p Point) bool {
	if ctx == nil || ctx.Surface == nil {
		return false
	}
	if ctx.Clip == nil {
		return true
	}
	box := Rect{X: p.X, Y: p.Y - c.center, Width: c.width, Height: c.height}
	return box.Intersects(*ctx.Clip)
}

// copyCommon 复制换行提示，几何与链接一律重新开始。
func (c *Cell) copyCommon(src *Cell) {
	c.forceBreakLine = src.forceBreakLine
	c.bigSkip = src.bigSkip
}

// adopt 把一条子链表挂到 c 下，并返回链表头。
func (c *Cell) adopt(head Node) Node {
	for n := head; n != nil; n = n.Next() {
		n.cell().parent = c.self
	}
	return head
}

// breakInto 把若干子链表依次接入绘制链以取代自身，segments 中的 nil 会被跳过。
func (c *Cell) breakInto(segments ...Node) bool {
	if c.brokenIntoLines {
		return false
	}
	var parts []Node
	for _, s := range segments {
		if s != nil {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return false
	}
	c.drawSuccessor = c.nextToDraw
	prev := c.self
	for _, head := range parts {
		linkDraw(prev, head)
		prev = lastToDraw(head)
	}
	linkDraw(prev, c.drawSuccessor)
	c.brokenIntoLines = true
	c.breakLine = false
	c.MarkDirty()
	if c.env != nil {
		c.env.log.Debug("Node broken into lines")
	}
	return true
}

// unbreakFrom 先递归恢复子节点，再拆除 BreakUp 建立的绘制链接。
func (c *Cell) unbreakFrom(segments ...Node) {
	for _, head := range c.self.InnerCells() {
		UnbreakList(head)
	}
	if c.brokenIntoLines {
		for _, head := range segments {
			if head == nil {
				continue
			}
			head.cell().prevToDraw = head.Previous()
			last := Last(head)
			last.cell().nextToDraw = last.Next()
		}
		c.nextToDraw = c.drawSuccessor
		if c.nextToDraw != nil {
			c.nextToDraw.cell().prevToDraw = c.self
		}
		c.drawSuccessor = nil
		c.brokenIntoLines = false
		c.MarkDirty()
	}
	c.breakLine = false
}

func linkDraw(a, b Node) {
	if a != nil {
		a.cell().nextToDraw = b
	}
	if b != nil {
		b.cell().prevToDraw = a
	}
}

// lastToDraw 返回一条逻辑链表在绘制顺序中的最后一个节点。
// 尚未展开的链表两者相同；若尾节点已展开，则沿绘制链走到其片段末尾。
func lastToDraw(head Node) Node {
	last := Last(head)
	for last.IsBrokenIntoLines() && last.NextToDraw() != nil {
		stop := last.cell().drawSuccessor
		n := last.NextToDraw()
		for n.NextToDraw() != nil && n.NextToDraw() != stop {
			n = n.NextToDraw()
		}
		last = n
	}
	return last
}
