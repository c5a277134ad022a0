package layout

// 该文件定义排版引擎共用的几何类型与枚举，供节点、换行器、渲染器与调试 JSON 共用。
// 所有长度单位均为毫米（mm），字号为点（pt）。

// Point 是绘制时的参考点：X 为左边缘，Y 为基线（baseline）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size 描述内容包围盒的宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect 表示一个矩形区域，X/Y 为左上角。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether the two rectangles overlap.
// Touching edges do not count as overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Kind 是节点的具体类型（封闭集合）。
type Kind int

const (
	KindText Kind = iota
	KindValueGroup
	KindAbs
	KindSubSup
	KindDiff
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindValueGroup:
		return "group"
	case KindAbs:
		return "abs"
	case KindSubSup:
		return "subsup"
	case KindDiff:
		return "diff"
	case KindContainer:
		return "cell"
	default:
		return "unknown"
	}
}

// TextStyle 决定文本片段的字体与导出时的语义标签。
type TextStyle int

const (
	StyleDefault TextStyle = iota
	StyleVariable
	StyleNumber
	StyleFunction
	StyleOperator
	StyleLabel
)

func (s TextStyle) String() string {
	switch s {
	case StyleVariable:
		return "variable"
	case StyleNumber:
		return "number"
	case StyleFunction:
		return "function"
	case StyleOperator:
		return "operator"
	case StyleLabel:
		return "label"
	default:
		return "default"
	}
}

// GroupType 区分容器节点的用途（代码、标题、正文等）。
type GroupType int

const (
	GroupCode GroupType = iota
	GroupTitle
	GroupSection
	GroupSubsection
	GroupText
)

var groupTypeNames = map[GroupType]string{
	GroupCode:       "code",
	GroupTitle:      "title",
	GroupSection:    "section",
	GroupSubsection: "subsection",
	GroupText:       "text",
}

func (g GroupType) String() string {
	if name, ok := groupTypeNames[g]; ok {
		return name
	}
	return "code"
}

// ParseGroupType 解析 XML 中的 type 属性，未知值按 code 处理。
func ParseGroupType(s string) GroupType {
	for t, name := range groupTypeNames {
		if name == s {
			return t
		}
	}
	return GroupCode
}
