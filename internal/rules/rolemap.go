package rules

// RoleMap maps a logical unit id to its tagged uids. Both levels keep
// insertion order, which is the order rule text is derived in.
type RoleMap struct {
	order []string
	units map[string]*unitRoles
}

type unitRoles struct {
	uids  []string
	roles map[string]Role
}

// NewRoleMap returns an empty map.
func NewRoleMap() *RoleMap {
	return &RoleMap{units: make(map[string]*unitRoles)}
}

// Record upserts the role of uid in unit. Updating an existing uid keeps
// its position.
func (m *RoleMap) Record(unit, uid string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u, ok := m.units[unit]
	if !ok {
		u = &unitRoles{roles: make(map[string]Role)}
		m.units[unit] = u
		m.order = append(m.order, unit)
	}
	if _, exists := u.roles[uid]; !exists {
		u.uids = append(u.uids, uid)
	}
	u.roles[uid] = role
	return nil
}

// Remove drops the tag of uid. A unit left without tags is dropped.
func (m *RoleMap) Remove(unit, uid string) bool {
	u, ok := m.units[unit]
	if !ok {
		return false
	}
	if _, exists := u.roles[uid]; !exists {
		return false
	}
	delete(u.roles, uid)
	u.uids = without(u.uids, uid)
	if len(u.uids) == 0 {
		m.Drop(unit)
	}
	return true
}

// Rename moves the tag of oldUID to newUID in place.
func (m *RoleMap) Rename(unit, oldUID, newUID string) bool {
	u, ok := m.units[unit]
	if !ok || oldUID == newUID {
		return false
	}
	role, exists := u.roles[oldUID]
	if !exists {
		return false
	}
	if newUID == "" {
		return m.Remove(unit, oldUID)
	}
	if _, taken := u.roles[newUID]; taken {
		u.roles[newUID] = role
		return m.Remove(unit, oldUID)
	}
	delete(u.roles, oldUID)
	u.roles[newUID] = role
	for i, uid := range u.uids {
		if uid == oldUID {
			u.uids[i] = newUID
		}
	}
	return true
}

// Drop removes every tag of unit.
func (m *RoleMap) Drop(unit string) {
	if _, ok := m.units[unit]; !ok {
		return
	}
	delete(m.units, unit)
	m.order = without(m.order, unit)
}

// Has reports whether unit has a tag for uid.
func (m *RoleMap) Has(unit, uid string) bool {
	u, ok := m.units[unit]
	if !ok {
		return false
	}
	_, ok = u.roles[uid]
	return ok
}

// Role returns the tag of uid in unit.
func (m *RoleMap) Role(unit, uid string) (Role, bool) {
	u, ok := m.units[unit]
	if !ok {
		return "", false
	}
	r, ok := u.roles[uid]
	return r, ok
}

// Units returns the unit ids that have at least one tag.
func (m *RoleMap) Units() []string {
	return append([]string(nil), m.order...)
}

// Entries returns the tags of unit in insertion order.
func (m *RoleMap) Entries(unit string) []Entry {
	u, ok := m.units[unit]
	if !ok {
		return nil
	}
	out := make([]Entry, 0, len(u.uids))
	for _, uid := range u.uids {
		out = append(out, Entry{UID: uid, Role: u.roles[uid]})
	}
	return out
}

// Clone returns an independent copy.
func (m *RoleMap) Clone() *RoleMap {
	c := NewRoleMap()
	for _, unit := range m.order {
		for _, e := range m.Entries(unit) {
			c.Record(unit, e.UID, e.Role)
		}
	}
	return c
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
