package layout

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Format 是导出格式。
type Format int

const (
	FormatText Format = iota
	FormatTeX
	FormatMathML
	FormatOMML
	FormatMatlab
	FormatXML
)

var formatNames = []string{"text", "tex", "mathml", "omml", "matlab", "xml"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat 解析命令行或配置里的格式名（大小写不敏感）。
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("未知的导出格式 %q（可选：%s）", s, strings.Join(formatNames, ", "))
}

// DocumentVersion 是持久化 XML 根元素的版本号。
const DocumentVersion = "1"

// Export 把整条逻辑链表转换为指定格式。
// 导出总是作用在副本上，因此结果与当前的换行展开状态无关。
func Export(head Node, f Format) (string, error) {
	head = CopyList(head)
	switch f {
	case FormatText:
		return ListToString(head), nil
	case FormatTeX:
		return ListToTeX(head), nil
	case FormatMathML:
		return `<math xmlns="http://www.w3.org/1998/Math/MathML">` + ListToMathML(head) + "</math>", nil
	case FormatOMML:
		return `<m:oMathPara xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"><m:oMath>` +
			ListToOMML(head) + "</m:oMath></m:oMathPara>", nil
	case FormatMatlab:
		return ListToMatlab(head), nil
	case FormatXML:
		doc := XMLDocument(head)
		doc.Indent(2)
		return doc.WriteToString()
	}
	return "", fmt.Errorf("未知的导出格式 %d", int(f))
}

// XMLDocument 生成持久化文档：<mathdoc version="1"> 下依次是各节点。
func XMLDocument(head Node) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := ListXML("mathdoc", head)
	root.CreateAttr("version", DocumentVersion)
	doc.SetRoot(root)
	return doc
}
