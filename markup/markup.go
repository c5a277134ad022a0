// Package markup reads and writes the persistence XML form of a layout tree.
//
// The format is the one produced by layout.XMLDocument: a <mathdoc> root
// holding one element per node, with nested <r> rows for every owned list.
// Parsing is tolerant: an unknown element is reported, dropped together with
// its subtree, and parsing continues with its siblings.
package markup

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/mathcell/layout"
)

// Parse reads a persistence document from r. Structural problems inside the
// document do not stop parsing: the partial tree is returned together with
// all collected errors.
func Parse(r io.Reader, env *layout.Env, log *zap.Logger) (layout.Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	return ParseDocument(doc, env, log)
}

// ParseString is Parse for in-memory documents.
func ParseString(s string, env *layout.Env, log *zap.Logger) (layout.Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	return ParseDocument(doc, env, log)
}

// ParseDocument walks an already loaded DOM.
func ParseDocument(doc *etree.Document, env *layout.Env, log *zap.Logger) (layout.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if log == nil {
		log = zap.NewNop()
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "mathdoc" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}
	if v := root.SelectAttrValue("version", layout.DocumentVersion); v != layout.DocumentVersion {
		log.Warn("Unsupported document version, trying anyway", zap.String("version", v))
	}

	p := &parser{env: env, log: log}
	head := p.row(root)
	return head, p.errs
}

// Write serializes the logical chain starting at head.
func Write(w io.Writer, head layout.Node) error {
	doc := layout.XMLDocument(layout.CopyList(head))
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}

type parser struct {
	env  *layout.Env
	log  *zap.Logger
	errs error
}

// fail records a dropped fragment.
func (p *parser) fail(parent, el *etree.Element, format string, args ...any) {
	err := fmt.Errorf("%s: %s", el.GetPath(), fmt.Sprintf(format, args...))
	p.log.Warn("Unparsable fragment in "+parent.Tag+", dropping", zap.String("tag", el.Tag), zap.Error(err))
	p.errs = multierr.Append(p.errs, err)
}

// row builds the logical chain of all node elements under el.
func (p *parser) row(el *etree.Element) layout.Node {
	var head layout.Node
	for _, child := range el.ChildElements() {
		if n := p.node(el, child); n != nil {
			head = layout.Append(head, n)
		}
	}
	return head
}

func (p *parser) node(parent, el *etree.Element) layout.Node {
	var n layout.Node
	switch el.Tag {
	case "p":
		n = layout.NewValueGroup(p.env, p.single(el))
	case "a":
		n = layout.NewAbs(p.env, p.single(el))
	case "ss":
		n = p.subsup(el)
	case "d":
		n = p.diff(el)
	case "cell":
		n = p.cell(el)
	default:
		style, ok := layout.TextStyleForTag(el.Tag)
		if !ok {
			p.fail(parent, el, "unexpected tag <%s>", el.Tag)
			return nil
		}
		n = layout.NewText(p.env, el.Text(), style)
	}
	n.SetForceBreakLine(boolAttr(el, "breakline"))
	n.SetBigSkip(boolAttr(el, "bigskip"))
	return n
}

// single returns the content of the only <r> row of el.
func (p *parser) single(el *etree.Element) layout.Node {
	var head layout.Node
	seen := false
	for _, child := range el.ChildElements() {
		if child.Tag != "r" || seen {
			p.fail(el, child, "expected a single <r> row")
			continue
		}
		seen = true
		head = p.row(child)
	}
	return head
}

func (p *parser) subsup(el *etree.Element) layout.Node {
	s := layout.NewSubSup(p.env, nil)
	for _, child := range el.ChildElements() {
		pos := child.SelectAttrValue("pos", "")
		which, ok := layout.ParseScript(pos)
		if child.Tag != "r" || !ok {
			p.fail(el, child, "unexpected slot %q", pos)
			continue
		}
		if s.Slot(which) != nil {
			p.fail(el, child, "duplicate slot %q", pos)
			continue
		}
		s.SetSlot(which, p.row(child))
	}
	return s
}

func (p *parser) diff(el *etree.Element) layout.Node {
	order := 1
	if v := el.SelectAttrValue("order", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			p.fail(el.Parent(), el, "invalid order %q", v)
		} else {
			order = n
		}
	}
	var base, diff layout.Node
	for _, child := range el.ChildElements() {
		pos := child.SelectAttrValue("pos", "")
		switch {
		case child.Tag == "r" && pos == "base":
			base = p.row(child)
		case child.Tag == "r" && pos == "diff":
			diff = p.row(child)
		default:
			p.fail(el, child, "unexpected slot %q", pos)
		}
	}
	return layout.NewDiff(p.env, base, diff, order)
}

func (p *parser) cell(el *etree.Element) layout.Node {
	g := layout.NewGroup(p.env, layout.ParseGroupType(el.SelectAttrValue("type", "code")), nil)
	if v := el.SelectAttrValue("id", ""); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			p.fail(el.Parent(), el, "invalid id %q", v)
		} else {
			g.SetID(id)
		}
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "input":
			g.SetInput(p.row(child))
		case "output":
			g.SetOutput(p.row(child))
		default:
			p.fail(el, child, "unexpected tag <%s>", child.Tag)
		}
	}
	g.Hide(boolAttr(el, "hide"))
	return g
}

func boolAttr(el *etree.Element, name string) bool {
	v, err := strconv.ParseBool(el.SelectAttrValue(name, "false"))
	return err == nil && v
}
