package layout

import "go.uber.org/zap"

// Env 是一棵节点树共享的排版环境：度量后端、视觉参数与日志。
// 每次配置或字号变化都会递增 generation，使所有节点的几何缓存失效。
type Env struct {
	measurer   Measurer
	cfg        Config
	log        *zap.Logger
	generation uint64
	recalcs    int
}

// NewEnv 创建排版环境；log 为空时使用 zap.NewNop()。
func NewEnv(m Measurer, cfg Config, log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{measurer: m, cfg: cfg, log: log}
}

func (e *Env) Config() Config      { return e.cfg }
func (e *Env) Logger() *zap.Logger { return e.log }

// SetConfig 替换视觉参数，并强制下一次排版全量重算。
func (e *Env) SetConfig(cfg Config) {
	e.cfg = cfg
	e.Invalidate()
}

// Invalidate 使所有节点的宽高缓存失效。
func (e *Env) Invalidate() {
	e.generation++
	e.log.Debug("Layout invalidated", zap.Uint64("generation", e.generation))
}

// Recalculations 返回实际发生的宽/高重算次数，用于验证增量排版。
func (e *Env) Recalculations() int { return e.recalcs }

func (e *Env) currentGeneration() uint64 {
	if e == nil {
		return 0
	}
	return e.generation
}

// scriptSize 计算上下标使用的字号。
func (e *Env) scriptSize(fontSize float64) float64 {
	cfg := DefaultConfig()
	if e != nil {
		cfg = e.cfg
	}
	return max(cfg.MinFontSize, fontSize-cfg.ScriptDecrement)
}

func (e *Env) textWidth(text string, style TextStyle, fontSize float64) float64 {
	if e == nil || e.measurer == nil {
		return 0
	}
	return e.measurer.TextWidth(text, style, fontSize)
}

func (e *Env) metrics(style TextStyle, fontSize float64) (float64, float64) {
	if e == nil || e.measurer == nil {
		return 0, 0
	}
	return e.measurer.Metrics(style, fontSize)
}
