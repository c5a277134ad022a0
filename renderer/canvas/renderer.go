package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"go.uber.org/zap"

	"github.com/ByLCY/mathcell/fonts"
	"github.com/ByLCY/mathcell/layout"
	"github.com/ByLCY/mathcell/renderer"
)

// Output 是渲染输出格式。
type Output string

const (
	OutputPDF Output = "pdf"
	OutputSVG Output = "svg"
	OutputPNG Output = "png"
)

// ParseOutput 按名称（不区分大小写）解析输出格式。
func ParseOutput(name string) (Output, error) {
	switch o := Output(strings.ToLower(name)); o {
	case OutputPDF, OutputSVG, OutputPNG:
		return o, nil
	}
	return "", fmt.Errorf("不支持的输出格式 %q", name)
}

// Options configures the canvas renderer.
type Options struct {
	Output Output
	// Margin 是内容四周的留白（mm）。
	Margin float64
	// DPI 只影响 PNG 输出。
	DPI float64
	// Fonts 按文本样式覆盖字体来源，见 fonts.Load。
	Fonts   map[layout.TextStyle]string
	BaseDir string
	Color   color.Color
}

// DefaultFonts 为每种文本样式选择内置 Latin Modern 字体。
func DefaultFonts() map[layout.TextStyle]string {
	return map[layout.TextStyle]string{
		layout.StyleDefault:  "embed:" + fonts.Regular,
		layout.StyleVariable: "embed:" + fonts.Italic,
		layout.StyleNumber:   "embed:" + fonts.Regular,
		layout.StyleFunction: "embed:" + fonts.Regular,
		layout.StyleOperator: "embed:" + fonts.Regular,
		layout.StyleLabel:    "embed:" + fonts.Bold,
	}
}

// Renderer lays out node chains and draws them via github.com/tdewolff/canvas.
// 它同时是排版引擎的 Measurer，保证度量与绘制使用同一套字体。
type Renderer struct {
	opts Options
	env  *layout.Env
	log  *zap.Logger

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
	faces    map[faceKey]*canvas.FontFace
	fallback *canvas.FontFamily
	fontErr  error
}

type faceKey struct {
	style layout.TextStyle
	size  float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
	_ layout.Surface    = (*surface)(nil)
)

// New creates a renderer with its own layout environment.
func New(cfg layout.Config, opts Options, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Output == "" {
		opts.Output = OutputPDF
	}
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	if opts.Color == nil {
		opts.Color = canvas.Black
	}
	merged := DefaultFonts()
	for style, src := range opts.Fonts {
		if src != "" {
			merged[style] = src
		}
	}
	opts.Fonts = merged

	r := &Renderer{
		opts:     opts,
		log:      log,
		families: map[string]*canvas.FontFamily{},
		faces:    map[faceKey]*canvas.FontFace{},
	}
	r.env = layout.NewEnv(r, cfg, log)
	return r
}

// Env 返回以本渲染器为度量后端的排版环境，节点必须在该环境中创建。
func (r *Renderer) Env() *layout.Env { return r.env }

// TextWidth 实现 layout.Measurer，返回 mm。
func (r *Renderer) TextWidth(text string, style layout.TextStyle, fontSize float64) float64 {
	face := r.face(style, fontSize)
	if face == nil {
		return 0
	}
	return face.TextWidth(text)
}

// Metrics 实现 layout.Measurer，返回基线之上与之下的高度（mm）。
func (r *Renderer) Metrics(style layout.TextStyle, fontSize float64) (float64, float64) {
	face := r.face(style, fontSize)
	if face == nil {
		return 0, 0
	}
	m := face.Metrics()
	return m.Ascent, m.Descent
}

// Render 以 LineWidth 排版 head，并按 Output 输出整张内容页。
func (r *Renderer) Render(head layout.Node) ([]byte, error) {
	if head == nil {
		return nil, fmt.Errorf("没有可渲染的内容")
	}
	if head.Env() != r.env {
		return nil, fmt.Errorf("节点不属于该渲染器的排版环境")
	}
	cfg := r.env.Config()
	engine := layout.NewEngine(r.env)
	size := engine.Layout(head, cfg.LineWidth)
	if err := r.fontError(); err != nil {
		return nil, err
	}

	margin := r.opts.Margin
	width, height := size.Width+2*margin, size.Height+2*margin
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	var baseline float64
	if lines := layout.Lines(head); len(lines) > 0 {
		baseline = lines[0].Center
	}
	engine.Draw(head, layout.Point{X: margin, Y: margin + baseline}, &layout.DrawContext{
		Surface: &surface{r: r, ctx: ctx},
	})

	data, err := r.encode(c, width, height)
	if err != nil {
		return nil, err
	}
	r.log.Debug("Rendered",
		zap.String("output", string(r.opts.Output)),
		zap.Float64("width", width),
		zap.Float64("height", height),
		zap.Int("bytes", len(data)))
	return data, nil
}

func (r *Renderer) encode(c *canvas.Canvas, width, height float64) ([]byte, error) {
	var buf bytes.Buffer
	switch r.opts.Output {
	case OutputPDF:
		writer := pdf.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case OutputSVG:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case OutputPNG:
		img := rasterizer.Draw(c, canvas.DPI(r.opts.DPI), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", r.opts.Output)
	}
	return buf.Bytes(), nil
}

// surface 把节点的绘制请求转为 canvas 调用。
type surface struct {
	r   *Renderer
	ctx *canvas.Context
}

func (s *surface) DrawText(x, baseline float64, text string, style layout.TextStyle, fontSize float64) {
	face := s.r.face(style, fontSize)
	if face == nil || text == "" {
		return
	}
	s.ctx.DrawText(x, baseline, canvas.NewTextLine(face, text, canvas.Left))
}

func (s *surface) DrawLine(x1, y1, x2, y2, width float64) {
	s.ctx.SetStrokeColor(s.r.opts.Color)
	s.ctx.SetStrokeWidth(width)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	s.ctx.DrawPath(x1, y1, p)
}

// face 返回样式与字号对应的字体面；字体加载失败时回退到内置正文字体。
func (r *Renderer) face(style layout.TextStyle, fontSize float64) *canvas.FontFace {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	key := faceKey{style, fontSize}
	if f, ok := r.faces[key]; ok {
		return f
	}
	family := r.family(style)
	if family == nil {
		return nil
	}
	f := family.Face(fontSize, r.opts.Color, canvas.FontRegular, canvas.FontNormal)
	r.faces[key] = f
	return f
}

func (r *Renderer) family(style layout.TextStyle) *canvas.FontFamily {
	src := r.opts.Fonts[style]
	if family, ok := r.families[src]; ok {
		return family
	}
	family := canvas.NewFontFamily(src)
	err := loadInto(family, src, r.opts.BaseDir)
	if err != nil {
		r.log.Warn("Unable to load font, using fallback", zap.Stringer("style", style), zap.String("src", src), zap.Error(err))
		family = r.fallbackFamily()
	}
	r.families[src] = family
	return family
}

func (r *Renderer) fallbackFamily() *canvas.FontFamily {
	if r.fallback != nil {
		return r.fallback
	}
	family := canvas.NewFontFamily("mathcell-fallback")
	if err := loadInto(family, "embed:"+fonts.Regular, ""); err != nil {
		r.fontErr = fmt.Errorf("加载后备字体失败: %w", err)
		return nil
	}
	r.fallback = family
	return family
}

func (r *Renderer) fontError() error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.fontErr
}

func loadInto(family *canvas.FontFamily, src, baseDir string) error {
	data, err := fonts.Load(src, baseDir)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, canvas.FontRegular)
}
