package document

// captureTemplates stores one cleared copy of each sample item found in a
// dynamic container and removes the samples from the tree. Condition slots
// are captured and detached the same way, so a property or relation starts
// without one. Nested containers are handled first, so templates never carry
// sample items or condition slots of their own.
func (d *Document) captureTemplates(n *Node) {
	for _, c := range n.children.list() {
		d.captureTemplates(c)
	}

	if conditionSlots[n.Name] && n.parent != nil {
		d.storeTemplate(n.Name, n)
		d.storeTemplate(conditionKind, n)
		n.parent.children.remove(n.Key)
		n.parent = nil
		return
	}
	if !dynamicContainers[n.Name] {
		return
	}
	for _, sample := range n.children.list() {
		d.storeTemplate(sample.Name, sample)
		n.children.remove(sample.Key)
		sample.parent = nil
	}
}

func (d *Document) storeTemplate(kind string, sample *Node) {
	if _, ok := d.templates[kind]; ok {
		return
	}
	t := sample.Clone()
	clearValues(t)
	d.templates[kind] = t
	d.log.Debug().Str("kind", kind).Msg("template captured")
}

// slotKind resolves the generic condition kind to the slot name the owner
// declares.
func (d *Document) slotKind(kind string, owner *Node) string {
	if kind != conditionKind {
		return kind
	}
	ct, ok := d.model.ComplexOf(owner.Decl)
	if !ok {
		return kind
	}
	for _, f := range d.model.Fields(ct) {
		if conditionSlots[f.Name] {
			return f.Name
		}
	}
	return kind
}

// instantiate returns a fresh item of kind for insertion into container.
// Lookup order: the template of kind, the template of its singular form,
// then a cleared copy of the container's first child.
func (d *Document) instantiate(kind string, container *Node) (*Node, bool) {
	if t, ok := d.templates[kind]; ok {
		return t.Clone(), true
	}
	if t, ok := d.templates[singular(kind)]; ok {
		return t.Clone(), true
	}
	if container != nil {
		if kids := container.children.list(); len(kids) > 0 {
			item := kids[0].Clone()
			clearValues(item)
			return item, true
		}
	}
	return nil, false
}
