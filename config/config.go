package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/ByLCY/mathcell/layout"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	// LayoutConfig mirrors layout.Config; lengths are strings such as "0.25mm" or "12pt".
	LayoutConfig struct {
		FontSize        float64 `yaml:"font_size" validate:"gt=0"`
		MinFontSize     float64 `yaml:"min_font_size" validate:"gt=0,ltefield=FontSize"`
		ScriptDecrement float64 `yaml:"script_decrement" validate:"gte=0"`
		LineWidth       string  `yaml:"line_width" validate:"required"`
		Unit            string  `yaml:"unit" validate:"required"`
		StrokeWidth     string  `yaml:"stroke_width" validate:"required"`
		CellSkip        string  `yaml:"cell_skip" validate:"required"`
		LineSkip        string  `yaml:"line_skip" validate:"required"`
		BigSkip         string  `yaml:"big_skip" validate:"required"`
		GroupSkip       string  `yaml:"group_skip" validate:"required"`
		Indent          string  `yaml:"indent" validate:"required"`
	}

	RenderConfig struct {
		Format string  `yaml:"format" validate:"oneof=pdf svg png"`
		Margin string  `yaml:"margin" validate:"required"`
		DPI    float64 `yaml:"dpi" validate:"min=36,max=2400"`
		// Fonts maps text styles (default, variable, ...) to font sources.
		Fonts map[string]string `yaml:"fonts" validate:"dive,keys,oneof=default variable number function operator label,endkeys,required"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Layout  LayoutConfig  `yaml:"layout"`
		Render  RenderConfig  `yaml:"render"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// 只允许已定义的字段，因此不能直接使用 yaml.Unmarshal
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Layout.Engine(); err != nil {
		return nil, err
	}
	if _, err := cfg.Render.MarginMM(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposing its values on top of the embedded defaults. An empty path
// returns the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if len(path) == 0 {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Default returns the embedded configuration as is.
func Default() []byte { return defaultConfig }

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Engine converts the section into layout parameters in millimeters.
func (c LayoutConfig) Engine() (layout.Config, error) {
	out := layout.Config{
		FontSize:        c.FontSize,
		MinFontSize:     c.MinFontSize,
		ScriptDecrement: c.ScriptDecrement,
	}
	for _, f := range []struct {
		name string
		src  string
		dst  *float64
	}{
		{"line_width", c.LineWidth, &out.LineWidth},
		{"unit", c.Unit, &out.Unit},
		{"stroke_width", c.StrokeWidth, &out.StrokeWidth},
		{"cell_skip", c.CellSkip, &out.CellSkip},
		{"line_skip", c.LineSkip, &out.LineSkip},
		{"big_skip", c.BigSkip, &out.BigSkip},
		{"group_skip", c.GroupSkip, &out.GroupSkip},
		{"indent", c.Indent, &out.Indent},
	} {
		l, err := layout.ParseLength(f.src)
		if err != nil {
			return layout.Config{}, fmt.Errorf("layout.%s: %w", f.name, err)
		}
		if l.Value < 0 {
			return layout.Config{}, fmt.Errorf("layout.%s must not be negative: %s", f.name, f.src)
		}
		*f.dst = l.ToMM()
	}
	if out.LineWidth <= 0 {
		return layout.Config{}, fmt.Errorf("layout.line_width must be positive: %s", c.LineWidth)
	}
	return out, nil
}

// MarginMM returns the page margin in millimeters.
func (c RenderConfig) MarginMM() (float64, error) {
	l, err := layout.ParseLength(c.Margin)
	if err != nil {
		return 0, fmt.Errorf("render.margin: %w", err)
	}
	return l.ToMM(), nil
}

// StyleFonts converts the fonts map keys into text styles.
func (c RenderConfig) StyleFonts() map[layout.TextStyle]string {
	out := make(map[layout.TextStyle]string, len(c.Fonts))
	for _, style := range []layout.TextStyle{
		layout.StyleDefault, layout.StyleVariable, layout.StyleNumber,
		layout.StyleFunction, layout.StyleOperator, layout.StyleLabel,
	} {
		if src, ok := c.Fonts[style.String()]; ok {
			out[style] = src
		}
	}
	return out
}
