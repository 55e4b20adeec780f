package document

import "github.com/sbenjam1n/xsdform/internal/schema"

// builder materializes declarations into instance nodes.
type builder struct {
	model *schema.Model
	// open holds the named complex types currently being expanded.
	open map[string]bool
}

func newBuilder(m *schema.Model) *builder {
	return &builder{model: m, open: make(map[string]bool)}
}

func (b *builder) element(decl *schema.TypeNode) *Node {
	n := &Node{
		Key:     decl.Name,
		Name:    decl.Name,
		Decl:    decl,
		Special: b.model.Special(decl),
	}

	ct, ok := b.model.ComplexOf(decl)
	if !ok {
		n.Kind = KindLeaf
		if v := decl.Initial(); v != "" {
			n.Value = Text(v)
		}
		return n
	}

	n.Kind = b.kind(ct)
	for _, a := range b.model.Attributes(ct) {
		n.addAttr(attribute(a))
	}

	// A type reached again while it is being expanded stays an empty container.
	if ct.Name != "" {
		if b.open[ct.Name] {
			return n
		}
		b.open[ct.Name] = true
		defer delete(b.open, ct.Name)
	}
	for _, f := range b.model.Fields(ct) {
		n.addChild(b.element(f))
	}
	return n
}

// kind derives the node variant. A choice anywhere on the extension chain
// wins over the extension itself.
func (b *builder) kind(ct *schema.ComplexTypeDef) Kind {
	switch b.content(ct) {
	case schema.ContentChoice:
		return KindChoice
	case schema.ContentAll:
		if ct.Base == "" {
			return KindAll
		}
	}
	if ct.Base != "" {
		return KindExtension
	}
	return KindSequence
}

func (b *builder) content(ct *schema.ComplexTypeDef) schema.Content {
	seen := map[string]bool{}
	for ct != nil {
		if ct.Content != schema.ContentEmpty {
			return ct.Content
		}
		if ct.Base == "" || seen[ct.Base] {
			break
		}
		seen[ct.Base] = true
		ct, _ = b.model.LookupComplex(ct.Base)
	}
	return schema.ContentEmpty
}

func attribute(decl *schema.TypeNode) *Node {
	a := &Node{Key: decl.Name, Name: decl.Name, Decl: decl, Kind: KindLeaf}
	if v := decl.Initial(); v != "" {
		a.Value = Text(v)
	}
	return a
}

// syntheticLeaf builds a string leaf for a field the schema does not declare.
func syntheticLeaf(name string) *Node {
	return &Node{
		Key:  name,
		Name: name,
		Decl: &schema.TypeNode{Name: name, Type: "xs:string", Occurs: schema.Occurs{Min: 0, Max: 1}},
		Kind: KindLeaf,
	}
}

// clearValues resets every value under n to what a fresh item starts with.
func clearValues(n *Node) {
	walkAll(n, func(c *Node) {
		c.Value = nil
		c.Selected = ""
		if c.Decl != nil && c.Decl.Fixed != "" {
			c.Value = Text(c.Decl.Fixed)
		}
	})
}
