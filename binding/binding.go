// Package binding fills ${path} placeholders in text runs from a data tree.
package binding

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/mathcell/layout"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Apply 替换树中所有文本节点里的占位符，返回实际改变的节点数。
// 被改变的节点会标记为脏，下一次排版只重算受影响的部分。
func Apply(head layout.Node, data any) int {
	if data == nil {
		return 0
	}
	changed := 0
	layout.Walk(head, func(n layout.Node) bool {
		run, ok := n.(*layout.TextRun)
		if !ok {
			return true
		}
		if text := Interpolate(run.Text(), data); text != run.Text() {
			run.SetText(text)
			changed++
		}
		return true
	})
	return changed
}

// Interpolate 将 ${a.b[0]} 替换为 data 中对应的值，路径不存在时保留原样。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		steps, err := splitPath(path)
		if err != nil || len(steps) == 0 {
			return match
		}
		val, ok := lookup(data, steps)
		if !ok {
			return match
		}
		return format(val)
	})
}

// LoadData 读取 YAML 或 JSON 数据文件。
func LoadData(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析数据文件 %s 失败: %w", path, err)
	}
	return data, nil
}

// step 是路径中的一级：键名或数组下标。
type step struct {
	key   string
	index int
}

func (s step) isIndex() bool { return s.key == "" }

// splitPath 把 "points[1].x" 拆成 points, [1], x。
func splitPath(path string) ([]step, error) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			continue
		}
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			i, err := strconv.Atoi(idx)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q in %q", idx, path)
			}
			steps = append(steps, step{index: i})
		}
	}
	return steps, nil
}

func lookup(current any, steps []step) (any, bool) {
	for _, s := range steps {
		var ok bool
		if s.isIndex() {
			current, ok = element(current, s.index)
		} else {
			current, ok = field(current, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func field(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[any]any:
		val, ok := c[key]
		return val, ok
	}
	return nil, false
}

func element(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(val)
}
