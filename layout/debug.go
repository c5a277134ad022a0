package layout

import (
	"encoding/json"
	"os"
)

// DebugCell 是调试输出中单个绘制节点的位置与几何。
type DebugCell struct {
	Kind   string  `json:"kind"`
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Center float64 `json:"center"`
	Forced bool    `json:"forced,omitempty"`
}

// DebugLine 是一行及其成员。
type DebugLine struct {
	Line
	Baseline float64     `json:"baseline"`
	Cells    []DebugCell `json:"cells"`
}

// DebugDump 是一次排版结果的快照：包围盒与逐行的绘制位置。
type DebugDump struct {
	Extent Size        `json:"extent"`
	Lines  []DebugLine `json:"lines"`
}

// Snapshot 以与 Engine.Draw 相同的光标规则记录每个节点的位置。
func Snapshot(head Node, origin Point) *DebugDump {
	lines := Lines(head)
	dump := &DebugDump{Extent: linesExtent(head, lines)}
	if len(lines) == 0 {
		return dump
	}
	cfg := head.cell().config()
	y := origin.Y
	for i, ln := range lines {
		if i > 0 {
			y += lineAdvance(cfg, lines[i-1], ln)
		}
		dl := DebugLine{Line: ln, Baseline: y}
		x := origin.X
		for _, n := range ln.Cells {
			dl.Cells = append(dl.Cells, DebugCell{
				Kind:   n.Kind().String(),
				Text:   n.String(),
				X:      x,
				Y:      y,
				Width:  n.Width(),
				Height: n.Height(),
				Center: n.Center(),
				Forced: n.ForceBreakLine(),
			})
			x += n.Width() + cfg.CellSkip
		}
		dump.Lines = append(dump.Lines, dl)
	}
	return dump
}

// WriteDebugJSON 将排版快照输出为 JSON，便于调试或可视化。
func WriteDebugJSON(dump *DebugDump, path string) error {
	if dump == nil {
		return nil
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
