package dsl

import "github.com/ByLCY/mathcell/layout"

// Build 把语法树转换为节点链表。
// 第二条及之后的语句以强制换行开始，每条语句的最后一个节点请求 bigSkip。
func Build(doc *Document, env *layout.Env) layout.Node {
	if doc == nil {
		return nil
	}
	b := builder{env: env}
	var head layout.Node
	for i, st := range doc.Statements {
		chain := b.statement(st)
		if chain == nil {
			continue
		}
		if i > 0 && head != nil {
			chain.SetForceBreakLine(true)
		}
		layout.Last(chain).SetBigSkip(true)
		head = layout.Append(head, chain)
	}
	return head
}

// Compile 解析并构建，出错时不返回部分结果。
func Compile(src string, env *layout.Env) (layout.Node, error) {
	doc, err := ParseString(src)
	if err != nil {
		return nil, err
	}
	return Build(doc, env), nil
}

type builder struct {
	env *layout.Env
}

func (b builder) text(s string, style layout.TextStyle) layout.Node {
	return layout.NewText(b.env, s, style)
}

func (b builder) statement(st *Statement) layout.Node {
	if st == nil {
		return nil
	}
	var head layout.Node
	if st.Label != nil {
		head = b.text(string(*st.Label), layout.StyleLabel)
	}
	return layout.Append(head, b.expr(st.Expr))
}

func (b builder) expr(e *Expr) layout.Node {
	if e == nil {
		return nil
	}
	var head layout.Node
	for _, t := range e.Terms {
		if t.Op != "" {
			head = layout.Append(head, b.text(t.Op, layout.StyleOperator))
		}
		head = layout.Append(head, b.postfix(t.Value))
	}
	return head
}

func (b builder) postfix(p *Postfix) layout.Node {
	if p == nil {
		return nil
	}
	base := b.primary(p.Primary)
	if p.Sub == nil && p.Sup == nil {
		return base
	}
	ss := layout.NewSubSup(b.env, base)
	if p.Sub != nil {
		ss.SetIndex(b.primary(p.Sub))
	}
	if p.Sup != nil {
		ss.SetExponent(b.primary(p.Sup))
	}
	return ss
}

func (b builder) primary(p *Primary) layout.Node {
	switch {
	case p == nil:
		return nil
	case p.Abs != nil:
		return layout.NewAbs(b.env, b.expr(p.Abs))
	case p.Diff != nil:
		return layout.NewDiff(b.env, b.expr(p.Diff.Base), b.text(p.Diff.Var, layout.StyleVariable), p.Diff.Order)
	case p.Call != nil:
		var args layout.Node
		for i, a := range p.Call.Args {
			if i > 0 {
				args = layout.Append(args, b.text(",", layout.StyleOperator))
			}
			args = layout.Append(args, b.expr(a))
		}
		return layout.Chain(b.text(p.Call.Name, layout.StyleFunction), layout.NewValueGroup(b.env, args))
	case p.Group != nil:
		return layout.NewValueGroup(b.env, b.expr(p.Group))
	case p.Number != nil:
		return b.text(*p.Number, layout.StyleNumber)
	case p.Placeholder != nil:
		return b.text(*p.Placeholder, layout.StyleVariable)
	case p.Text != nil:
		return b.text(string(*p.Text), layout.StyleDefault)
	case p.Ident != nil:
		return b.text(*p.Ident, identStyle(*p.Ident))
	}
	return nil
}

// identStyle 把常见常量名按数字排版。
func identStyle(name string) layout.TextStyle {
	switch name {
	case "pi", "π", "inf", "e":
		return layout.StyleNumber
	}
	return layout.StyleVariable
}
