package layout

// Config 保存排版引擎的视觉常量。间距类数值只是调校参数，不承载语义。
type Config struct {
	FontSize        float64 // 默认字号（pt）
	MinFontSize     float64 // 上下标字号下限（pt）
	ScriptDecrement float64 // 上下标相对基础字号的缩减量（pt）
	LineWidth       float64 // 导出时使用的固定目标宽度（mm）
	Unit            float64 // 随 DPI 缩放的基本间距单位（mm）
	StrokeWidth     float64 // 装饰线宽（mm）
	CellSkip        float64 // 同一行相邻节点之间的间隙（mm）
	LineSkip        float64 // 普通行距附加值（mm）
	BigSkip         float64 // bigSkip 请求的额外行距（mm）
	GroupSkip       float64 // 容器输入与输出之间的间距（mm）
	Indent          float64 // 容器输出相对输入的缩进（mm）
}

// DefaultConfig 返回与 12pt 正文相匹配的默认参数。
func DefaultConfig() Config {
	return Config{
		FontSize:        12,
		MinFontSize:     6,
		ScriptDecrement: 3,
		LineWidth:       170,
		Unit:            0.25,
		StrokeWidth:     0.2,
		CellSkip:        0.8,
		LineSkip:        0.5,
		BigSkip:         2.5,
		GroupSkip:       1.5,
		Indent:          4,
	}
}

// Measurer 负责根据字体度量文本，由渲染后端实现（例如 canvas 渲染器）。
// fontSize 为 pt，返回值为 mm。
type Measurer interface {
	TextWidth(text string, style TextStyle, fontSize float64) float64
	Metrics(style TextStyle, fontSize float64) (ascent, descent float64)
}

// Surface 是节点绘制的目标画布。baseline 与 Point.Y 语义一致。
type Surface interface {
	DrawText(x, baseline float64, text string, style TextStyle, fontSize float64)
	DrawLine(x1, y1, x2, y2, width float64)
}

// DrawContext 携带绘制目标与可选的更新区域。
type DrawContext struct {
	Surface Surface
	// Clip 为空表示整个画布都需要重绘。
	Clip *Rect
}
