package document

import (
	"strconv"
	"strings"

	"github.com/sbenjam1n/xsdform/internal/schema"
)

// SetValue assigns v to the node at path. Leaves take Text. Only rich-content
// and structured containers take a *Record: it is spread into the attributes
// and sub-fields of a rich-content node and stored whole on a structured one.
// A nil value clears. Returns false, leaving the tree unchanged, when the
// path does not resolve or the value does not fit the node.
func (d *Document) SetValue(path string, v Value) bool {
	n, ok := d.resolve(path)
	if !ok {
		d.log.Debug().Str("path", path).Msg("set value: path not found")
		return false
	}

	switch val := v.(type) {
	case nil:
	case Text:
		if n.IsContainer() {
			d.log.Debug().Str("path", path).Msg("set value: text on a container")
			return false
		}
	case *Record:
		if !n.IsContainer() {
			d.log.Debug().Str("path", path).Msg("set value: record on a leaf")
			return false
		}
		switch n.Special {
		case schema.SpecialRichContent:
			d.spreadRecord(n, val)
			return true
		case schema.SpecialStructured:
			v = val.Clone()
		default:
			d.log.Debug().Str("path", path).Str("element", n.Name).Msg("set value: record on a plain container")
			return false
		}
	}

	old := n.Text()
	n.Value = v
	d.afterSet(n, old)
	return true
}

func (d *Document) spreadRecord(n *Node, r *Record) {
	for _, a := range r.Attrs {
		attr, ok := n.Attr(a.Name)
		if !ok {
			attr = syntheticLeaf(a.Name)
			n.addAttr(attr)
			d.index[PathOf(attr)] = attr
		}
		attr.Value = Text(a.Value)
	}
	for _, f := range r.Fields {
		c, ok := n.Child(f.Name)
		if !ok || c.IsContainer() {
			d.log.Debug().Str("field", f.Name).Str("element", n.Name).Msg("set value: record field not declared")
			continue
		}
		c.Value = Text(f.Text)
	}
}

// afterSet keeps rule state in step with an edited field: a renamed
// role-bearing uid keeps its tag, and typing into a rule holder switches the
// unit to manual mode until the text is cleared again.
func (d *Document) afterSet(n *Node, old string) {
	unit := enclosingUnit(n)
	if unit == nil {
		return
	}
	switch {
	case roleBearing[n.Name]:
		if old == "" || old == n.Text() || !d.roles.Has(unit.Key, old) {
			return
		}
		d.roles.Rename(unit.Key, old, n.Text())
	case n.Name == RuleHolderName && n.parent == unit:
		if n.Text() != "" {
			d.manual[unit.Key] = true
		} else {
			delete(d.manual, unit.Key)
		}
	default:
		return
	}
	d.refreshUnit(unit)
}

// AddChild creates an item of kind under the container at parentPath and
// returns its key. In a dynamic container the key is desiredKey when that is
// a plain free sibling key, otherwise {Name}_{suffix} with a strictly
// increasing millisecond suffix. Any other container only takes back an
// optional single field it declares, such as a condition slot; the field is
// keyed by its element name and adding it again is a no-op.
func (d *Document) AddChild(parentPath, kind, desiredKey string) (string, bool) {
	parent, ok := d.resolve(parentPath)
	if !ok || !parent.IsContainer() {
		d.log.Debug().Str("path", parentPath).Str("kind", kind).Msg("add child: no container at path")
		return "", false
	}
	if !IsDynamicContainer(parent.Name) {
		return d.addField(parent, d.slotKind(kind, parent))
	}
	item, ok := d.instantiate(kind, parent)
	if !ok {
		d.log.Debug().Str("path", parentPath).Str("kind", kind).Msg("add child: no template")
		return "", false
	}

	item.Key = desiredKey
	if _, taken := parent.Child(desiredKey); !validKey(desiredKey) || taken {
		item.Key = d.freshKey(parent, item.Name)
	}
	d.insert(parent, item)
	return item.Key, true
}

func (d *Document) addField(parent *Node, name string) (string, bool) {
	ct, ok := d.model.ComplexOf(parent.Decl)
	if !ok {
		d.log.Debug().Str("element", parent.Name).Str("kind", name).Msg("add child: parent declares no fields")
		return "", false
	}
	decl, ok := d.model.Field(ct, name)
	if !ok || decl.Occurs.Repeatable() {
		d.log.Debug().Str("element", parent.Name).Str("kind", name).Msg("add child: not an optional single field")
		return "", false
	}
	if _, present := parent.ChildByName(name); present {
		d.log.Debug().Str("element", parent.Name).Str("kind", name).Msg("add child: field already present")
		return "", false
	}

	var item *Node
	if t, ok := d.templates[name]; ok {
		item = t.Clone()
	} else {
		item = newBuilder(d.model).element(decl)
	}
	item.Key = name

	order := make(map[string]int)
	for i, f := range d.model.Fields(ct) {
		order[f.Name] = i
	}
	d.prepare(item)
	parent.insertChild(item, order)
	d.indexSubtree(item, PathOf(item))
	return item.Key, true
}

// validKey reports whether a caller-chosen key can be used as one path segment.
func validKey(key string) bool {
	return key != "" && !strings.Contains(key, ".") && !strings.HasPrefix(key, attrMarker)
}

// CopyChild duplicates the sibling sourceKey under the same parent with
// fresh identifiers and returns the key of the copy. Copying a logical unit
// also points references inside the copy at the new identifiers and carries
// the unit's role tags and manual flag over.
func (d *Document) CopyChild(parentPath, sourceKey string) (string, bool) {
	parent, ok := d.resolve(parentPath)
	if !ok {
		d.log.Debug().Str("path", parentPath).Msg("copy child: path not found")
		return "", false
	}
	src, ok := parent.Child(sourceKey)
	if !ok {
		d.log.Debug().Str("path", parentPath).Str("key", sourceKey).Msg("copy child: source not found")
		return "", false
	}

	cp := src.Clone()
	cp.Key = d.freshKey(parent, src.Name)
	walkAll(cp, func(c *Node) {
		if IsIdentifierField(c.Name) && c.Kind == KindLeaf {
			c.Value = nil
		}
	})
	d.prepare(cp)

	remap := make(map[string]string)
	walkPair(src, cp, func(a, b *Node) {
		if IsIdentifierField(a.Name) && a.Text() != "" {
			remap[a.Text()] = b.Text()
		}
	})

	if src.Name == LogicalUnitName {
		walkAll(cp, func(c *Node) {
			if IsIdentifierField(c.Name) || c.Kind != KindLeaf {
				return
			}
			if repl, ok := remap[c.Text()]; ok {
				c.Value = Text(repl)
			}
		})
		for _, e := range d.roles.Entries(src.Key) {
			if uid, ok := remap[e.UID]; ok {
				d.roles.Record(cp.Key, uid, e.Role)
			}
		}
		if d.manual[src.Key] {
			d.manual[cp.Key] = true
		}
	}

	d.attach(parent, cp)
	if cp.Name == LogicalUnitName {
		d.refreshUnit(cp)
	}
	return cp.Key, true
}

// RemoveChild removes the item key from the container at parentPath. Only
// removable kinds go; protected identification fields never do. Role tags
// that pointed into the removed subtree are dropped with it.
func (d *Document) RemoveChild(parentPath, key string) bool {
	parent, ok := d.resolve(parentPath)
	if !ok {
		d.log.Debug().Str("path", parentPath).Msg("remove child: path not found")
		return false
	}
	child, ok := parent.Child(key)
	if !ok || !IsRemovable(child.Name) {
		d.log.Debug().Str("path", parentPath).Str("key", key).Msg("remove child: not removable")
		return false
	}

	unit := enclosingUnit(child)
	if child.Name == LogicalUnitName {
		d.roles.Drop(child.Key)
		delete(d.manual, child.Key)
		unit = nil
	} else if unit != nil {
		walkAll(child, func(c *Node) {
			if IsIdentifierField(c.Name) && c.Text() != "" {
				d.roles.Remove(unit.Key, c.Text())
			}
		})
	}

	d.unindex(PathOf(child))
	parent.children.remove(key)
	child.parent = nil
	if unit != nil {
		d.refreshUnit(unit)
	}
	return true
}

// Select picks the branch of a choice node. Selecting is idempotent and a
// choice never returns to unselected.
func (d *Document) Select(path, branch string) bool {
	n, ok := d.resolve(path)
	if !ok || n.Kind != KindChoice {
		d.log.Debug().Str("path", path).Msg("select: no choice at path")
		return false
	}
	if _, ok := n.Child(branch); !ok {
		d.log.Debug().Str("path", path).Str("branch", branch).Msg("select: unknown branch")
		return false
	}
	n.Selected = branch
	return true
}

func (d *Document) insert(parent, item *Node) {
	d.prepare(item)
	d.attach(parent, item)
}

func (d *Document) attach(parent, item *Node) {
	parent.addChild(item)
	d.indexSubtree(item, PathOf(item))
}

func (d *Document) freshKey(parent *Node, name string) string {
	for {
		ms := d.clock().UnixMilli()
		if ms <= d.lastSuffix {
			ms = d.lastSuffix + 1
		}
		d.lastSuffix = ms
		key := name + "_" + strconv.FormatInt(ms, 10)
		if _, taken := parent.Child(key); !taken {
			return key
		}
	}
}

func enclosingUnit(n *Node) *Node {
	for c := n; c != nil; c = c.parent {
		if c.Name == LogicalUnitName && !c.attribute {
			return c
		}
	}
	return nil
}
