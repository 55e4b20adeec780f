package document

import "github.com/sbenjam1n/xsdform/internal/schema"

// prepare fills what a new or freshly loaded subtree needs before it can be
// edited: rich-content attributes, missing identifiers and rule holders.
// Values already present are never overwritten.
func (d *Document) prepare(n *Node) {
	walkAll(n, func(c *Node) {
		switch {
		case c.attribute:
		case c.Special == schema.SpecialRichContent && c.IsContainer():
			d.prepareRich(c)
		case c.Name == LogicalUnitName && c.IsContainer():
			ensureRuleHolder(c)
		}
		if IsIdentifierField(c.Name) && c.Kind == KindLeaf && c.Text() == "" {
			c.Value = Text(d.ids.next(d.prefixFor(c)))
		}
	})
}

func (d *Document) prepareRich(n *Node) {
	typ, ok := n.Attr(RichTypeAttr)
	if !ok {
		typ = syntheticLeaf(RichTypeAttr)
		n.addAttr(typ)
	}
	if typ.Text() == "" {
		if lit, ok := RichTypes[n.Name]; ok {
			typ.Value = Text(lit)
		}
	}
	if _, ok := n.Attr(RichUIDAttr); !ok {
		n.addAttr(syntheticLeaf(RichUIDAttr))
	}
}

// ensureRuleHolder gives a logical unit its excluded rule text leaf.
func ensureRuleHolder(unit *Node) *Node {
	h, ok := unit.Child(RuleHolderName)
	if !ok {
		h = syntheticLeaf(RuleHolderName)
		unit.addChild(h)
	}
	h.Excluded = true
	mode, ok := h.Attr(RuleModeAttr)
	if !ok {
		mode = syntheticLeaf(RuleModeAttr)
		h.addAttr(mode)
	}
	if mode.Text() == "" {
		mode.Value = Text(ModeAutomatic)
	}
	return h
}

func (d *Document) prefixFor(n *Node) string {
	owner := ""
	if n.parent != nil {
		owner = n.parent.Name
	}
	return uidPrefix(d.model.Pattern(n.Decl), owner, n.Name)
}
