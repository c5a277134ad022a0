package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// 内置 Latin Modern 字体的名称。
const (
	Regular    = "lmroman10-regular"
	Italic     = "lmroman10-italic"
	Bold       = "lmroman10-bold"
	BoldItalic = "lmroman10-bolditalic"
)

var builtin = map[string][]byte{
	Regular:    lmroman10regular.TTF,
	Italic:     lmroman10italic.TTF,
	Bold:       lmroman10bold.TTF,
	BoldItalic: lmroman10bolditalic.TTF,
}

// Load 返回字体数据。src 可写为 "embed:lmroman10-italic"，
// 也可以是字体文件路径；相对路径基于 baseDir 解析。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	if name, ok := strings.CutPrefix(src, "embed:"); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", name, strings.Join(Names(), ", "))
		}
		return data, nil
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// Names 列出全部内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
