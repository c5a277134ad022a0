package layout

import (
	"math"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// stubMeasurer 以固定的每字宽度模拟字体：12pt 时每个字符 1.5mm，上升 3mm、下降 1mm。
type stubMeasurer struct{}

func (stubMeasurer) TextWidth(text string, _ TextStyle, fontSize float64) float64 {
	return 1.5 * float64(utf8.RuneCountInString(text)) * fontSize / 12
}

func (stubMeasurer) Metrics(_ TextStyle, fontSize float64) (float64, float64) {
	return 3 * fontSize / 12, fontSize / 12
}

type drawnText struct {
	X, Y     float64
	Text     string
	FontSize float64
}

type drawnLine struct {
	X1, Y1, X2, Y2, Width float64
}

// recordingSurface 记录所有绘制调用，代替真实画布。
type recordingSurface struct {
	texts []drawnText
	lines []drawnLine
}

func (s *recordingSurface) DrawText(x, baseline float64, text string, _ TextStyle, fontSize float64) {
	s.texts = append(s.texts, drawnText{X: x, Y: baseline, Text: text, FontSize: fontSize})
}

func (s *recordingSurface) DrawLine(x1, y1, x2, y2, width float64) {
	s.lines = append(s.lines, drawnLine{x1, y1, x2, y2, width})
}

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	return NewEnv(stubMeasurer{}, DefaultConfig(), log)
}

func txt(env *Env, s string) *TextRun { return NewText(env, s, StyleVariable) }

func num(env *Env, s string) *TextRun { return NewText(env, s, StyleNumber) }

func op(env *Env, s string) *TextRun { return NewText(env, s, StyleOperator) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

type geometry struct {
	width, height, center float64
}

func geometryOf(n Node) geometry {
	return geometry{n.Width(), n.Height(), n.Center()}
}

// collect 返回逻辑树中的所有节点（含内部槽位）。
func collect(head Node) []Node {
	var out []Node
	Walk(head, func(n Node) bool {
		out = append(out, n)
		return true
	})
	return out
}
