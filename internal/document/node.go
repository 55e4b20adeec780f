package document

import (
	"slices"

	"github.com/sbenjam1n/xsdform/internal/schema"
)

// Kind is the structural variant of a node.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindSequence
	KindAll
	KindChoice
	KindExtension
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSequence:
		return "sequence"
	case KindAll:
		return "all"
	case KindChoice:
		return "choice"
	case KindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Node is one materialized element or attribute of the instance tree.
type Node struct {
	// Key is unique among the node's siblings.
	Key string
	// Name is the element or attribute name used on export.
	Name    string
	Decl    *schema.TypeNode
	Kind    Kind
	Special schema.SpecialKind
	Value   Value
	// Excluded nodes exist for in-tree computation only and are never exported.
	Excluded bool
	// Selected is the chosen branch key of a choice node.
	Selected string

	attribute bool
	parent    *Node
	children  childList
	attrs     childList
}

// Parent returns the containing node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsAttribute reports whether n materializes an attribute.
func (n *Node) IsAttribute() bool { return n.attribute }

// IsContainer reports whether n can hold child nodes.
func (n *Node) IsContainer() bool { return n.Kind != KindLeaf }

// Text returns the scalar value, or "" when the value is absent or a record.
func (n *Node) Text() string {
	if t, ok := n.Value.(Text); ok {
		return string(t)
	}
	return ""
}

// Record returns the structured value, if one is assigned.
func (n *Node) Record() *Record {
	r, _ := n.Value.(*Record)
	return r
}

// Child returns the child with the given key.
func (n *Node) Child(key string) (*Node, bool) { return n.children.get(key) }

// Children returns the children in insertion order.
func (n *Node) Children() []*Node { return n.children.list() }

// Attr returns the attribute node with the given name.
func (n *Node) Attr(name string) (*Node, bool) { return n.attrs.get(name) }

// Attrs returns the attribute nodes in declaration order.
func (n *Node) Attrs() []*Node { return n.attrs.list() }

// ChildByName returns the first child materializing the named element.
func (n *Node) ChildByName(name string) (*Node, bool) {
	if c, ok := n.children.get(name); ok && c.Name == name {
		return c, true
	}
	for _, c := range n.children.list() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (n *Node) addChild(c *Node) {
	c.parent = n
	c.attribute = false
	n.children.put(c)
}

// insertChild adds c before the first child that sorts after it in order.
func (n *Node) insertChild(c *Node, order map[string]int) {
	c.parent = n
	c.attribute = false
	at := n.children.len()
	for i, sib := range n.children.list() {
		if pos, ok := order[sib.Name]; ok && pos > order[c.Name] {
			at = i
			break
		}
	}
	n.children.putAt(c, at)
}

func (n *Node) addAttr(a *Node) {
	a.parent = n
	a.attribute = true
	n.attrs.put(a)
}

// Clone returns a deep copy of the subtree rooted at n. The copy has no parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Key:       n.Key,
		Name:      n.Name,
		Decl:      n.Decl,
		Kind:      n.Kind,
		Special:   n.Special,
		Value:     cloneValue(n.Value),
		Excluded:  n.Excluded,
		Selected:  n.Selected,
		attribute: n.attribute,
	}
	for _, a := range n.attrs.list() {
		c.addAttr(a.Clone())
	}
	for _, ch := range n.children.list() {
		c.addChild(ch.Clone())
	}
	return c
}

// walk visits n and every descendant element in pre-order. Attributes are
// not visited; returning false skips the node's children.
func walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.children.list() {
		walk(c, fn)
	}
}

// walkAll visits n, its attributes and every descendant in pre-order.
func walkAll(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, a := range n.attrs.list() {
		fn(a)
	}
	for _, c := range n.children.list() {
		walkAll(c, fn)
	}
}

// walkPair visits two structurally identical subtrees in lockstep.
func walkPair(a, b *Node, fn func(a, b *Node)) {
	if a == nil || b == nil {
		return
	}
	fn(a, b)
	aa, ba := a.attrs.list(), b.attrs.list()
	for i := 0; i < len(aa) && i < len(ba); i++ {
		fn(aa[i], ba[i])
	}
	ac, bc := a.children.list(), b.children.list()
	for i := 0; i < len(ac) && i < len(bc); i++ {
		walkPair(ac[i], bc[i], fn)
	}
}

// childList is a keyed collection that keeps insertion order.
type childList struct {
	keys  []string
	nodes map[string]*Node
}

func (l *childList) get(key string) (*Node, bool) {
	n, ok := l.nodes[key]
	return n, ok
}

func (l *childList) put(n *Node) {
	if l.nodes == nil {
		l.nodes = make(map[string]*Node)
	}
	if _, exists := l.nodes[n.Key]; !exists {
		l.keys = append(l.keys, n.Key)
	}
	l.nodes[n.Key] = n
}

func (l *childList) putAt(n *Node, i int) {
	if _, exists := l.nodes[n.Key]; exists || i >= len(l.keys) {
		l.put(n)
		return
	}
	l.keys = slices.Insert(l.keys, i, n.Key)
	l.nodes[n.Key] = n
}

func (l *childList) remove(key string) bool {
	if _, ok := l.nodes[key]; !ok {
		return false
	}
	delete(l.nodes, key)
	for i, k := range l.keys {
		if k == key {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			break
		}
	}
	return true
}

func (l *childList) list() []*Node {
	out := make([]*Node, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, l.nodes[k])
	}
	return out
}

func (l *childList) len() int { return len(l.keys) }
