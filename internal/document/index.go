package document

import "strings"

const attrMarker = "@"

// Reindex rebuilds the path index from the tree.
func (d *Document) Reindex() {
	d.index = make(map[string]*Node)
	if d.root != nil {
		d.indexSubtree(d.root, d.root.Key)
	}
}

func (d *Document) indexSubtree(n *Node, path string) {
	d.index[path] = n
	for _, a := range n.attrs.list() {
		d.index[path+"."+attrMarker+a.Key] = a
	}
	for _, c := range n.children.list() {
		d.indexSubtree(c, path+"."+c.Key)
	}
}

// unindex drops path and everything below it.
func (d *Document) unindex(path string) {
	prefix := path + "."
	for p := range d.index {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(d.index, p)
		}
	}
}

// PathOf returns the dotted path of a node attached to a tree.
func PathOf(n *Node) string {
	var segs []string
	for c := n; c != nil; c = c.parent {
		if c.attribute {
			segs = append(segs, attrMarker+c.Key)
			continue
		}
		segs = append(segs, c.Key)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ".")
}

// resolve looks a path up in the index. A miss falls back to walking the
// tree; a node found that way means the index drifted, so the hit is logged
// and written back.
func (d *Document) resolve(path string) (*Node, bool) {
	if n, ok := d.index[path]; ok {
		return n, true
	}
	n, ok := d.walkPath(path)
	if !ok {
		return nil, false
	}
	d.log.Warn().Str("path", path).Msg("path index miss resolved by tree walk")
	d.index[path] = n
	return n, true
}

func (d *Document) walkPath(path string) (*Node, bool) {
	if d.root == nil || path == "" {
		return nil, false
	}
	segs := strings.Split(path, ".")
	if segs[0] != d.root.Key {
		return nil, false
	}
	n := d.root
	for _, seg := range segs[1:] {
		var ok bool
		if name, isAttr := strings.CutPrefix(seg, attrMarker); isAttr {
			n, ok = n.Attr(name)
		} else {
			n, ok = n.Child(seg)
		}
		if !ok {
			return nil, false
		}
	}
	return n, true
}
