package renderer

import "github.com/ByLCY/mathcell/layout"

// Renderer 将排版后的节点链表输出为最终文件，例如 PDF、SVG 或 PNG。
// Render 负责排版与绘制，返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(head layout.Node) ([]byte, error)
}
