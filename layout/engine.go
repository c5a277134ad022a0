package layout

import "go.uber.org/zap"

// Line 是换行后的一行：按绘制顺序排列的成员及其合并几何。
type Line struct {
	Cells   []Node  `json:"-"`
	Width   float64 `json:"width"`
	Center  float64 `json:"center"`
	Drop    float64 `json:"drop"`
	BigSkip bool    `json:"bigSkip,omitempty"`
}

// Engine 驱动一条顶层链表的排版流程：宽度 → 展开 → 断行 → 高度。
// 断行状态保存在链表头上，任意 Engine 都可以接着排版同一棵树。
type Engine struct {
	env *Env
}

func NewEngine(env *Env) *Engine {
	return &Engine{env: env}
}

// Layout 以目标宽度 width（mm）排版 head 开始的链表，返回内容包围盒。
// 宽度、字号或环境配置与上次不同时先撤销所有展开，再重新断行。
func (e *Engine) Layout(head Node, width float64) Size {
	if head == nil {
		return Size{}
	}
	fontSize := e.env.cfg.FontSize
	head.cell().lines.layout(head, width, fontSize)
	size := Extent(head)
	e.env.log.Debug("Layout finished",
		zap.Float64("width", width),
		zap.Float64("extentWidth", size.Width),
		zap.Float64("extentHeight", size.Height),
		zap.Int("recalculations", e.env.recalcs))
	return size
}

// Draw 从 origin 开始绘制，origin.Y 是第一行的基线。
func (e *Engine) Draw(head Node, origin Point, ctx *DrawContext) {
	drawLines(head, origin, ctx)
}

// breakState 记录一条链表上次断行时的宽度、字号与环境代数。
type breakState struct {
	width, fontSize float64
	generation      uint64
	valid           bool
}

// layout 在断行条件变化（或从未在此记录过）时先撤销整条链表的展开。
func (s *breakState) layout(head Node, width, fontSize float64) bool {
	gen := head.Env().currentGeneration()
	if !s.valid || s.width != width || s.fontSize != fontSize || s.generation != gen {
		UnbreakList(head)
	}
	*s = breakState{width: width, fontSize: fontSize, generation: gen, valid: true}
	return layoutChain(head, width, fontSize)
}

func (s *breakState) reset() { *s = breakState{} }

func layoutChain(head Node, width, fontSize float64) bool {
	for n := head; n != nil; n = n.Next() {
		if g, ok := n.(*ContainerGroup); ok {
			g.BreakLines(width)
		}
	}
	recalculateWidthsDraw(head, fontSize)
	BreakUpCells(head, width, fontSize)
	changed := BreakLines(head, width)
	recalculateHeightDraw(head, fontSize)
	return changed
}

// BreakUpCells 展开绘制链中所有宽于 width 的节点；展开出的片段紧跟在节点之后，
// 因此同一次遍历会继续检查并展开嵌套的过宽节点。
func BreakUpCells(head Node, width, fontSize float64) int {
	broken := 0
	for n := head; n != nil; n = n.NextToDraw() {
		if n.IsBrokenIntoLines() || n.Width() <= width {
			continue
		}
		if n.BreakUp() {
			broken++
			n.RecalculateWidths(fontSize)
		}
	}
	if broken > 0 {
		// 展开会把祖先标脏，整条绘制链再算一遍宽度。
		recalculateWidthsDraw(head, fontSize)
	}
	return broken
}

// BreakLines 贪心地为绘制链中的节点设置 BreakLine，返回是否有标记发生变化。
// 已展开的节点不占位置，但它的强制换行请求会转交给下一个实际绘制的节点。
func BreakLines(head Node, width float64) bool {
	if head == nil {
		return false
	}
	skip := head.cell().config().CellSkip
	changed := false
	first := true
	forced := false
	prevContainer := false
	var acc float64
	for n := head; n != nil; n = n.NextToDraw() {
		c := n.cell()
		if n.IsBrokenIntoLines() {
			forced = forced || n.ForceBreakLine()
			continue
		}
		w := n.Width()
		isContainer := n.Kind() == KindContainer
		brk := !first && (forced || n.ForceBreakLine() || isContainer || prevContainer || acc+w > width)
		if brk || first {
			acc = w + skip
		} else {
			acc += w + skip
		}
		if c.breakLine != brk {
			c.breakLine = brk
			changed = true
		}
		first, forced, prevContainer = false, false, isContainer
	}
	return changed
}

// Lines 把绘制链按 BreakLine 分组成行。
func Lines(head Node) []Line {
	if head == nil {
		return nil
	}
	skip := head.cell().config().CellSkip
	var lines []Line
	var cur *Line
	for n := head; n != nil; n = n.NextToDraw() {
		if n.IsBrokenIntoLines() {
			if cur != nil && n.BigSkip() {
				cur.BigSkip = true
			}
			continue
		}
		if cur == nil || n.BreakLine() {
			lines = append(lines, Line{})
			cur = &lines[len(lines)-1]
		}
		if len(cur.Cells) > 0 {
			cur.Width += skip
		}
		cur.Cells = append(cur.Cells, n)
		cur.Width += n.Width()
		cur.Center = max(cur.Center, n.Center())
		cur.Drop = max(cur.Drop, n.Drop())
		cur.BigSkip = cur.BigSkip || n.BigSkip()
	}
	return lines
}

// lineAdvance 是从上一行基线到下一行基线的距离。
func lineAdvance(cfg Config, prev, next Line) float64 {
	d := prev.Drop + cfg.LineSkip + next.Center
	if prev.BigSkip {
		d += cfg.BigSkip
	}
	return d
}

// Extent 返回整条绘制链的包围盒。
func Extent(head Node) Size {
	return linesExtent(head, Lines(head))
}

func linesExtent(head Node, lines []Line) Size {
	if len(lines) == 0 {
		return Size{}
	}
	cfg := head.cell().config()
	s := Size{Height: lines[0].Center}
	for i, ln := range lines {
		s.Width = max(s.Width, ln.Width)
		if i > 0 {
			s.Height += lineAdvance(cfg, lines[i-1], ln)
		}
	}
	s.Height += lines[len(lines)-1].Drop
	return s
}

// drawLines 按行绘制。光标推进只依赖缓存的几何，与节点是否真正绘制无关。
func drawLines(head Node, origin Point, ctx *DrawContext) {
	lines := Lines(head)
	if len(lines) == 0 {
		return
	}
	cfg := head.cell().config()
	y := origin.Y
	for i, ln := range lines {
		if i > 0 {
			y += lineAdvance(cfg, lines[i-1], ln)
		}
		x := origin.X
		for _, n := range ln.Cells {
			n.Draw(ctx, Point{X: x, Y: y})
			x += n.Width() + cfg.CellSkip
		}
	}
}
