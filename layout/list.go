package layout

import (
	"strings"

	"github.com/beevik/etree"
)

// 该文件提供对逻辑链表（Next/Previous）与绘制链表（NextToDraw）的通用操作。

// Last 返回逻辑链表的尾节点。
func Last(head Node) Node {
	if head == nil {
		return nil
	}
	n := head
	for n.Next() != nil {
		n = n.Next()
	}
	return n
}

// Chain 把若干独立节点串成一条链表并返回表头，nil 会被跳过。
func Chain(nodes ...Node) Node {
	var head Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		head = Append(head, n)
	}
	return head
}

// Append 把 tail 链表接到 head 之后，同时镜像绘制顺序，返回新的表头。
// 新节点继承 head 的父节点，父节点随之标脏。
func Append(head, tail Node) Node {
	if tail == nil {
		return head
	}
	if head == nil {
		return tail
	}
	last := Last(head)
	end := lastToDraw(head)
	last.cell().next = tail
	tail.cell().prev = last
	if last.IsBrokenIntoLines() {
		last.cell().drawSuccessor = tail
	}
	linkDraw(end, tail)

	parent := head.Parent()
	for n := tail; n != nil; n = n.Next() {
		n.cell().parent = parent
	}
	if parent != nil {
		parent.MarkDirty()
	}
	return head
}

// Cells 按逻辑顺序返回链表中的所有节点。
func Cells(head Node) []Node {
	var out []Node
	for n := head; n != nil; n = n.Next() {
		out = append(out, n)
	}
	return out
}

// DrawCells 按绘制顺序返回从 head 出发的所有节点，包括已展开的节点本身。
func DrawCells(head Node) []Node {
	var out []Node
	for n := head; n != nil; n = n.NextToDraw() {
		out = append(out, n)
	}
	return out
}

// Walk 深度优先遍历逻辑树（含 InnerCells），fn 返回 false 时不再进入该节点的子树。
func Walk(head Node, fn func(Node) bool) {
	for n := head; n != nil; n = n.Next() {
		if !fn(n) {
			continue
		}
		for _, inner := range n.InnerCells() {
			Walk(inner, fn)
		}
	}
}

// ListWidth 是逻辑链表紧密排列时的总宽度。
func ListWidth(head Node) float64 {
	var w float64
	for n := head; n != nil; n = n.Next() {
		w += n.Width()
	}
	return w
}

func ListMaxCenter(head Node) float64 {
	var c float64
	for n := head; n != nil; n = n.Next() {
		c = max(c, n.Center())
	}
	return c
}

func ListMaxDrop(head Node) float64 {
	var d float64
	for n := head; n != nil; n = n.Next() {
		d = max(d, n.Drop())
	}
	return d
}

func ListMaxHeight(head Node) float64 {
	return ListMaxCenter(head) + ListMaxDrop(head)
}

// RecalculateWidthsList 对逻辑链表中的每个节点执行宽度计算。
func RecalculateWidthsList(head Node, fontSize float64) {
	for n := head; n != nil; n = n.Next() {
		n.RecalculateWidths(fontSize)
	}
}

func RecalculateHeightList(head Node, fontSize float64) {
	for n := head; n != nil; n = n.Next() {
		n.RecalculateHeight(fontSize)
	}
}

func recalculateWidthsDraw(head Node, fontSize float64) {
	for n := head; n != nil; n = n.NextToDraw() {
		n.RecalculateWidths(fontSize)
	}
}

func recalculateHeightDraw(head Node, fontSize float64) {
	for n := head; n != nil; n = n.NextToDraw() {
		n.RecalculateHeight(fontSize)
	}
}

// RecalculateList 先对整条绘制链做宽度计算，再做高度计算。
func RecalculateList(head Node, fontSize float64) {
	recalculateWidthsDraw(head, fontSize)
	recalculateHeightDraw(head, fontSize)
}

// UnbreakList 撤销链表中所有节点的展开，绘制顺序恢复为逻辑顺序。
func UnbreakList(head Node) {
	for n := head; n != nil; n = n.Next() {
		n.Unbreak()
	}
}

// CopyList 深拷贝整条逻辑链表，副本不共享任何节点。
func CopyList(head Node) Node {
	var out Node
	for n := head; n != nil; n = n.Next() {
		out = Append(out, n.Copy())
	}
	return out
}

// DrawList 把未换行的逻辑链表紧密地画在同一基线上。
func DrawList(head Node, ctx *DrawContext, p Point) {
	for n := head; n != nil; n = n.Next() {
		n.Draw(ctx, p)
		p.X += n.Width()
	}
}

func ListToString(head Node) string {
	return foldList(head, Node.String, "\n")
}

func ListToTeX(head Node) string {
	return foldList(head, Node.TeX, "\\\\\n")
}

func ListToMathML(head Node) string {
	return foldList(head, Node.MathML, "")
}

func ListToOMML(head Node) string {
	return foldList(head, Node.OMML, "")
}

func ListToMatlab(head Node) string {
	return foldList(head, Node.Matlab, "\n")
}

// foldList 沿逻辑链表拼接各节点的导出结果；强制换行的节点前插入 sep。
func foldList(head Node, export func(Node) string, sep string) string {
	var sb strings.Builder
	for n := head; n != nil; n = n.Next() {
		if sb.Len() > 0 && (n.ForceBreakLine() || n.Kind() == KindContainer) {
			sb.WriteString(sep)
		}
		sb.WriteString(export(n))
	}
	return sb.String()
}

// ListXML 生成一个 tag 元素，依次包含链表中各节点的 XML。
func ListXML(tag string, head Node) *etree.Element {
	el := etree.NewElement(tag)
	for n := head; n != nil; n = n.Next() {
		if child := n.XML(); child != nil {
			el.AddChild(child)
		}
	}
	return el
}

// slotXML 生成 <r pos="..."> 行，空槽位返回 nil。
func slotXML(pos string, head Node) *etree.Element {
	if head == nil {
		return nil
	}
	el := ListXML("r", head)
	el.CreateAttr("pos", pos)
	return el
}

// hintsXML 写入换行提示属性。
func hintsXML(el *etree.Element, c *Cell) *etree.Element {
	if c.forceBreakLine {
		el.CreateAttr("breakline", "true")
	}
	if c.bigSkip {
		el.CreateAttr("bigskip", "true")
	}
	return el
}

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeMarkup(s string) string { return markupEscaper.Replace(s) }

var texEscaper = strings.NewReplacer(
	`\`, `\ensuremath{\backslash}`,
	"{", `\{`,
	"}", `\}`,
	"_", `\_`,
	"#", `\#`,
	"%", `\%`,
	"&", `\&`,
	"$", `\$`,
	"~", `\ensuremath{\sim}`,
)

func escapeTeX(s string) string { return texEscaper.Replace(s) }
