package layout

import (
	"strings"

	"github.com/beevik/etree"
)

// Script 标识 SubSuperscript 的五个槽位，顺序即 InnerCells 的顺序。
type Script int

const (
	ScriptBase Script = iota
	ScriptPreSub
	ScriptPreSup
	ScriptPostSub
	ScriptPostSup
	scriptCount
)

var scriptNames = [scriptCount]string{"base", "presub", "presup", "postsub", "postsup"}

func (s Script) String() string {
	if s < 0 || s >= scriptCount {
		return "unknown"
	}
	return scriptNames[s]
}

// ParseScript 解析 <r pos="..."> 中的槽位名。
func ParseScript(name string) (Script, bool) {
	for i, n := range scriptNames {
		if n == name {
			return Script(i), true
		}
	}
	return 0, false
}

// SubSuperscript 是带上下标（含左侧前置上下标）的组合。
// 上下标以缩小后的字号排版，整体不可展开。
type SubSuperscript struct {
	Cell
	slots [scriptCount]Node

	preWidth, postWidth float64
}

func NewSubSup(env *Env, base Node) *SubSuperscript {
	s := &SubSuperscript{}
	s.init(s, env)
	s.slots[ScriptBase] = s.adopt(base)
	return s
}

func (s *SubSuperscript) Kind() Kind { return KindSubSup }

// InnerCells 总是返回全部五个槽位，空槽位为 nil。
func (s *SubSuperscript) InnerCells() []Node {
	return s.slots[:]
}

func (s *SubSuperscript) Slot(which Script) Node { return s.slots[which] }

// SetSlot 替换一个槽位，旧内容被丢弃。
func (s *SubSuperscript) SetSlot(which Script, head Node) {
	if which < 0 || which >= scriptCount {
		return
	}
	s.slots[which] = s.adopt(head)
	s.MarkDirty()
}

func (s *SubSuperscript) SetBase(head Node)     { s.SetSlot(ScriptBase, head) }
func (s *SubSuperscript) SetPreSub(head Node)   { s.SetSlot(ScriptPreSub, head) }
func (s *SubSuperscript) SetPreSup(head Node)   { s.SetSlot(ScriptPreSup, head) }
func (s *SubSuperscript) SetIndex(head Node)    { s.SetSlot(ScriptPostSub, head) }
func (s *SubSuperscript) SetExponent(head Node) { s.SetSlot(ScriptPostSup, head) }

func (s *SubSuperscript) Copy() Node {
	c := NewSubSup(s.env, nil)
	for i, head := range s.slots {
		c.slots[i] = c.adopt(CopyList(head))
	}
	c.copyCommon(&s.Cell)
	return c
}

func (s *SubSuperscript) BreakUp() bool { return false }
func (s *SubSuperscript) Unbreak()      { s.unbreakFrom() }

func (s *SubSuperscript) RecalculateWidths(fontSize float64) {
	if !s.needsWidths(fontSize) {
		return
	}
	small := s.env.scriptSize(fontSize)
	for i, head := range s.slots {
		if Script(i) == ScriptBase {
			RecalculateWidthsList(head, fontSize)
		} else {
			RecalculateWidthsList(head, small)
		}
	}
	s.preWidth = max(ListWidth(s.slots[ScriptPreSub]), ListWidth(s.slots[ScriptPreSup]))
	s.postWidth = max(ListWidth(s.slots[ScriptPostSub]), ListWidth(s.slots[ScriptPostSup]))
	s.width = s.preWidth + ListWidth(s.slots[ScriptBase]) + s.postWidth
	s.widthsDone(fontSize)
}

// RecalculateHeight 让上标底边落在基底中线（center/2）之上，下标顶边落在基底下沿一半处。
func (s *SubSuperscript) RecalculateHeight(fontSize float64) {
	if !s.needsHeight(fontSize) {
		return
	}
	small := s.env.scriptSize(fontSize)
	for i, head := range s.slots {
		if Script(i) == ScriptBase {
			RecalculateHeightList(head, fontSize)
		} else {
			RecalculateHeightList(head, small)
		}
	}
	bc, bd := s.baseCenter(), s.baseDrop()
	supH := max(ListMaxHeight(s.slots[ScriptPreSup]), ListMaxHeight(s.slots[ScriptPostSup]))
	subH := max(ListMaxHeight(s.slots[ScriptPreSub]), ListMaxHeight(s.slots[ScriptPostSub]))
	s.center = max(bc, bc/2+supH)
	s.height = s.center + max(bd, bd/2+subH)
	s.heightDone(fontSize)
}

func (s *SubSuperscript) baseCenter() float64 { return ListMaxCenter(s.slots[ScriptBase]) }
func (s *SubSuperscript) baseDrop() float64   { return ListMaxDrop(s.slots[ScriptBase]) }

func (s *SubSuperscript) Draw(ctx *DrawContext, p Point) {
	if !s.InUpdateRegion(ctx, p) {
		return
	}
	bc, bd := s.baseCenter(), s.baseDrop()
	supY := func(head Node) float64 { return p.Y - bc/2 - ListMaxDrop(head) }
	subY := func(head Node) float64 { return p.Y + bd/2 + ListMaxCenter(head) }

	if head := s.slots[ScriptPreSup]; head != nil {
		DrawList(head, ctx, Point{X: p.X + s.preWidth - ListWidth(head), Y: supY(head)})
	}
	if head := s.slots[ScriptPreSub]; head != nil {
		DrawList(head, ctx, Point{X: p.X + s.preWidth - ListWidth(head), Y: subY(head)})
	}
	x := p.X + s.preWidth
	DrawList(s.slots[ScriptBase], ctx, Point{X: x, Y: p.Y})
	x += ListWidth(s.slots[ScriptBase])
	if head := s.slots[ScriptPostSup]; head != nil {
		DrawList(head, ctx, Point{X: x, Y: supY(head)})
	}
	if head := s.slots[ScriptPostSub]; head != nil {
		DrawList(head, ctx, Point{X: x, Y: subY(head)})
	}
}

// compound 判断一段链表在线性文本中是否需要加括号。
func compound(head Node) bool {
	if head == nil {
		return false
	}
	return head.Next() != nil || head.Kind() != KindText
}

func wrapText(head Node, export func(Node) string) string {
	s := export(head)
	if compound(head) {
		return "(" + s + ")"
	}
	return s
}

func (s *SubSuperscript) String() string {
	var sb strings.Builder
	if head := s.slots[ScriptPreSub]; head != nil {
		sb.WriteString("_" + wrapText(head, ListToString))
	}
	if head := s.slots[ScriptPreSup]; head != nil {
		sb.WriteString("^" + wrapText(head, ListToString))
	}
	sb.WriteString(wrapText(s.slots[ScriptBase], ListToString))
	if head := s.slots[ScriptPostSub]; head != nil {
		sb.WriteString("[" + ListToString(head) + "]")
	}
	if head := s.slots[ScriptPostSup]; head != nil {
		sb.WriteString("^" + wrapText(head, ListToString))
	}
	return sb.String()
}

func (s *SubSuperscript) Matlab() string {
	var sb strings.Builder
	sb.WriteString(wrapText(s.slots[ScriptBase], ListToMatlab))
	if head := s.slots[ScriptPostSub]; head != nil {
		sb.WriteString("(" + ListToMatlab(head) + ")")
	}
	if head := s.slots[ScriptPostSup]; head != nil {
		sb.WriteString("^" + wrapText(head, ListToMatlab))
	}
	return sb.String()
}

func (s *SubSuperscript) TeX() string {
	var sb strings.Builder
	if s.slots[ScriptPreSub] != nil || s.slots[ScriptPreSup] != nil {
		sb.WriteString("{}")
		if head := s.slots[ScriptPreSub]; head != nil {
			sb.WriteString("_{" + ListToTeX(head) + "}")
		}
		if head := s.slots[ScriptPreSup]; head != nil {
			sb.WriteString("^{" + ListToTeX(head) + "}")
		}
	}
	sb.WriteString("{" + ListToTeX(s.slots[ScriptBase]) + "}")
	if head := s.slots[ScriptPostSub]; head != nil {
		sb.WriteString("_{" + ListToTeX(head) + "}")
	}
	if head := s.slots[ScriptPostSup]; head != nil {
		sb.WriteString("^{" + ListToTeX(head) + "}")
	}
	return sb.String()
}

func mrow(head Node) string {
	if head == nil {
		return "<none/>"
	}
	return "<mrow>" + ListToMathML(head) + "</mrow>"
}

func (s *SubSuperscript) MathML() string {
	base := mrow(s.slots[ScriptBase])
	sub, sup := s.slots[ScriptPostSub], s.slots[ScriptPostSup]
	if s.slots[ScriptPreSub] != nil || s.slots[ScriptPreSup] != nil {
		return "<mmultiscripts>" + base + mrow(sub) + mrow(sup) + "<mprescripts/>" +
			mrow(s.slots[ScriptPreSub]) + mrow(s.slots[ScriptPreSup]) + "</mmultiscripts>"
	}
	switch {
	case sub != nil && sup != nil:
		return "<msubsup>" + base + mrow(sub) + mrow(sup) + "</msubsup>"
	case sub != nil:
		return "<msub>" + base + mrow(sub) + "</msub>"
	case sup != nil:
		return "<msup>" + base + mrow(sup) + "</msup>"
	}
	return base
}

func (s *SubSuperscript) OMML() string {
	base := "<m:e>" + ListToOMML(s.slots[ScriptBase]) + "</m:e>"
	sub, sup := s.slots[ScriptPostSub], s.slots[ScriptPostSup]
	switch {
	case sub != nil && sup != nil:
		base = "<m:sSubSup>" + base + "<m:sub>" + ListToOMML(sub) + "</m:sub><m:sup>" + ListToOMML(sup) + "</m:sup></m:sSubSup>"
	case sub != nil:
		base = "<m:sSub>" + base + "<m:sub>" + ListToOMML(sub) + "</m:sub></m:sSub>"
	case sup != nil:
		base = "<m:sSup>" + base + "<m:sup>" + ListToOMML(sup) + "</m:sup></m:sSup>"
	}
	if s.slots[ScriptPreSub] == nil && s.slots[ScriptPreSup] == nil {
		return base
	}
	if sub != nil || sup != nil {
		base = "<m:e>" + base + "</m:e>"
	}
	return "<m:sPre><m:sub>" + ListToOMML(s.slots[ScriptPreSub]) + "</m:sub><m:sup>" +
		ListToOMML(s.slots[ScriptPreSup]) + "</m:sup>" + base + "</m:sPre>"
}

func (s *SubSuperscript) XML() *etree.Element {
	el := etree.NewElement("ss")
	for i, head := range s.slots {
		if r := slotXML(Script(i).String(), head); r != nil {
			el.AddChild(r)
		}
	}
	return hintsXML(el, &s.Cell)
}
