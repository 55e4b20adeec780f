// Package codec serializes a document's instance tree to XML. Empty branches
// are pruned, scalar values are normalized by their declared type and the
// rich-content and structured kinds get their dedicated layouts.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/schema"
)

const indent = 2

var (
	// ErrEmptyDocument is reported when there is no root to serialize.
	ErrEmptyDocument = errors.New("document has no root element")
	// ErrUnnamedRoot is reported when the root element has no name.
	ErrUnnamedRoot = errors.New("root element has no name")
)

// GenerationError is the only error Serialize returns. Output is never
// partial when it is set.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "xml generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Serialize rebuilds the document's rules and renders the tree as indented
// XML. Any fault while walking the tree, including a panic, comes back as a
// *GenerationError.
func Serialize(doc *document.Document) (out string, err error) {
	if doc == nil || doc.Root() == nil {
		return "", &GenerationError{Err: ErrEmptyDocument}
	}
	if doc.Root().Name == "" {
		return "", &GenerationError{Err: ErrUnnamedRoot}
	}

	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &GenerationError{Err: fmt.Errorf("%v", r)}
		}
	}()

	doc.RebuildRules()

	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	x.WriteSettings.CanonicalText = true

	e := &encoder{model: doc.Model()}
	root := doc.Root()
	if e.keep(root) {
		e.element(&x.Element, root)
	} else {
		x.CreateElement(root.Name)
	}
	x.Indent(indent)

	s, err := x.WriteToString()
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return strings.TrimRight(s, "\n") + "\n", nil
}

type encoder struct {
	model *schema.Model
}

// keep reports whether n survives pruning: it must carry a value, a
// non-empty attribute or a descendant that survives.
func (e *encoder) keep(n *document.Node) bool {
	if n == nil || n.Excluded {
		return false
	}
	switch n.Kind {
	case document.KindLeaf:
		return e.scalar(n) != "" || hasAttrs(n, nil)
	case document.KindChoice:
		if hasAttrs(n, nil) {
			return true
		}
		branch, ok := n.Child(n.Selected)
		return ok && e.keep(branch)
	}

	if n.Special == schema.SpecialRichContent {
		return hasAttrs(n, generatedRichAttrs) || len(richFields(n)) > 0
	}
	if structured(n) {
		return true
	}
	if hasAttrs(n, nil) {
		return true
	}
	for _, c := range n.Children() {
		if e.keep(c) {
			return true
		}
	}
	return false
}

func (e *encoder) element(parent *etree.Element, n *document.Node) {
	el := parent.CreateElement(n.Name)
	e.attributes(el, n)

	switch {
	case n.Kind == document.KindLeaf:
		e.leafBody(el, n)
	case n.Special == schema.SpecialRichContent:
		e.rich(el, n)
	case structured(n):
		rec := n.Record()
		recordAttrs(el, rec)
		record(el, rec)
	case n.Kind == document.KindChoice:
		if branch, ok := n.Child(n.Selected); ok && e.keep(branch) {
			e.element(el, branch)
		}
	default:
		for _, c := range n.Children() {
			if e.keep(c) {
				e.element(el, c)
			}
		}
	}
}

func (e *encoder) leafBody(el *etree.Element, n *document.Node) {
	v := e.scalar(n)
	if v == "" {
		return
	}
	if e.model.Scalar(n.Decl) == schema.ScalarString && hasMarkup(v) {
		cdata(el, v)
		return
	}
	el.SetText(v)
}

func (e *encoder) attributes(el *etree.Element, n *document.Node) {
	for _, a := range n.Attrs() {
		if v := e.scalar(a); v != "" {
			el.CreateAttr(a.Name, v)
		}
	}
}

// rich emits the fixed sub-fields of a rich-content element. The data field
// of graphic and formula content goes out as CDATA when it holds markup.
func (e *encoder) rich(el *etree.Element, n *document.Node) {
	literal := false
	if t, ok := n.Attr(document.RichTypeAttr); ok {
		literal = t.Text() == document.RichTypes["GraphElement"] || t.Text() == document.RichTypes["FormulaElement"]
	}
	for _, f := range richFields(n) {
		field := el.CreateElement(f.Name)
		v := f.Text()
		if f.Name == document.RichFields[0] && literal && hasMarkup(v) {
			cdata(field, v)
			continue
		}
		field.SetText(v)
	}
}

// recordAttrs writes the attributes of a record. A record attribute replaces
// a node attribute of the same name.
func recordAttrs(el *etree.Element, r *document.Record) {
	for _, a := range r.Attrs {
		if a.Value != "" {
			el.CreateAttr(a.Name, a.Value)
		}
	}
}

func record(el *etree.Element, r *document.Record) {
	for _, f := range r.Fields {
		switch {
		case !f.Record.Empty():
			sub := el.CreateElement(f.Name)
			recordAttrs(sub, f.Record)
			record(sub, f.Record)
		case f.Text != "":
			el.CreateElement(f.Name).SetText(f.Text)
		}
	}
}

// structured reports whether n is a structured element carrying a record.
func structured(n *document.Node) bool {
	return n.Special == schema.SpecialStructured && !n.Record().Empty()
}

// scalar returns the formatted text of a leaf or attribute.
func (e *encoder) scalar(n *document.Node) string {
	v := n.Text()
	if v == "" {
		return ""
	}
	return formatScalar(e.model.Scalar(n.Decl), v)
}

// generatedRichAttrs are filled automatically and do not keep a rich
// element alive on their own.
var generatedRichAttrs = map[string]bool{
	document.RichTypeAttr: true,
	document.RichUIDAttr:  true,
}

func hasAttrs(n *document.Node, ignore map[string]bool) bool {
	for _, a := range n.Attrs() {
		if a.Text() != "" && !ignore[a.Name] {
			return true
		}
	}
	return false
}

func richFields(n *document.Node) []*document.Node {
	var out []*document.Node
	for _, name := range document.RichFields {
		if c, ok := n.Child(name); ok && !c.Excluded && c.Text() != "" {
			out = append(out, c)
		}
	}
	return out
}
