package schema

// LookupComplex resolves a named complex type.
func (m *Model) LookupComplex(name string) (*ComplexTypeDef, bool) {
	if m == nil || name == "" {
		return nil, false
	}
	ct, ok := m.ComplexTypes[name]
	return ct, ok
}

// LookupSimple resolves a named simple type.
func (m *Model) LookupSimple(name string) (*SimpleTypeDef, bool) {
	if m == nil || name == "" {
		return nil, false
	}
	st, ok := m.SimpleTypes[name]
	return st, ok
}

// ComplexOf returns the complex type a declaration materializes: its inline
// definition if present, otherwise the named type it references.
func (m *Model) ComplexOf(n *TypeNode) (*ComplexTypeDef, bool) {
	if n == nil {
		return nil, false
	}
	if n.Complex != nil {
		return n.Complex, true
	}
	if IsBuiltin(n.Type) {
		return nil, false
	}
	return m.LookupComplex(n.Type)
}

// Fields returns the effective field list of ct. Inherited fields come
// first; a local field with the same name as an inherited one replaces it
// in place, the remaining local fields follow in declaration order.
func (m *Model) Fields(ct *ComplexTypeDef) []*TypeNode {
	return m.merge(ct, func(c *ComplexTypeDef) []*TypeNode { return c.Fields }, map[string]bool{})
}

// Attributes returns the effective attribute list of ct, merged through the
// extension chain like Fields.
func (m *Model) Attributes(ct *ComplexTypeDef) []*TypeNode {
	return m.merge(ct, func(c *ComplexTypeDef) []*TypeNode { return c.Attributes }, map[string]bool{})
}

func (m *Model) merge(ct *ComplexTypeDef, pick func(*ComplexTypeDef) []*TypeNode, seen map[string]bool) []*TypeNode {
	if ct == nil {
		return nil
	}
	var inherited []*TypeNode
	if ct.Base != "" && !seen[ct.Base] {
		seen[ct.Base] = true
		if base, ok := m.LookupComplex(ct.Base); ok {
			inherited = m.merge(base, pick, seen)
		}
	}

	local := pick(ct)
	if len(inherited) == 0 {
		return append([]*TypeNode(nil), local...)
	}

	out := append([]*TypeNode(nil), inherited...)
	pos := make(map[string]int, len(out))
	for i, f := range out {
		pos[f.Name] = i
	}
	for _, f := range local {
		if i, ok := pos[f.Name]; ok {
			out[i] = f
			continue
		}
		pos[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

// Field resolves a field of ct by name, including inherited fields.
func (m *Model) Field(ct *ComplexTypeDef, name string) (*TypeNode, bool) {
	for _, f := range m.Fields(ct) {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Extends reports whether ct is, or derives by extension from, the named type.
func (m *Model) Extends(ct *ComplexTypeDef, name string) bool {
	seen := map[string]bool{}
	for ct != nil {
		if ct.Name == name || ct.Base == name {
			return true
		}
		if ct.Base == "" || seen[ct.Base] {
			return false
		}
		seen[ct.Base] = true
		next, ok := m.LookupComplex(ct.Base)
		if !ok {
			return false
		}
		ct = next
	}
	return false
}
