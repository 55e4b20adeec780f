package document

import (
	"fmt"
	"strconv"

	"github.com/sbenjam1n/xsdform/internal/rules"
)

// RecordRole tags uid inside the logical unit unitID as premise or
// consequence. Tags other than those two are rejected with
// rules.ErrInvalidRole. A unit or uid that is not in the tree is ignored.
func (d *Document) RecordRole(unitID, uid string, role rules.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", rules.ErrInvalidRole, role)
	}
	unit, ok := d.unit(unitID)
	if !ok {
		d.log.Debug().Str("unit", unitID).Msg("record role: unit not found")
		return nil
	}
	if !unitUIDs(unit)[uid] {
		d.log.Debug().Str("unit", unitID).Str("uid", uid).Msg("record role: uid not in unit")
		return nil
	}
	if err := d.roles.Record(unitID, uid, role); err != nil {
		return err
	}
	d.refreshUnit(unit)
	return nil
}

// ClearRole removes the tag of uid in unitID.
func (d *Document) ClearRole(unitID, uid string) bool {
	if !d.roles.Remove(unitID, uid) {
		return false
	}
	if unit, ok := d.unit(unitID); ok {
		d.refreshUnit(unit)
	}
	return true
}

// DeriveRuleText returns the rule text the unit's current tags produce.
// There is no text without at least one premise.
func (d *Document) DeriveRuleText(unitID string) (string, bool) {
	return rules.Derive(d.roles.Entries(unitID))
}

// RebuildRules recomputes every logical unit's rule holder and rewrites the
// flat rule list, numbering records from 1 in tree order. Tags whose uid
// has left its unit are dropped first. When the tree has a PRules container
// its items are regenerated from the list. Export always runs this pass.
func (d *Document) RebuildRules() []rules.Record {
	units := d.units()

	present := make(map[string]*Node, len(units))
	for _, u := range units {
		present[u.Key] = u
	}
	for _, id := range d.roles.Units() {
		u, ok := present[id]
		if !ok {
			d.roles.Drop(id)
			continue
		}
		uids := unitUIDs(u)
		for _, e := range d.roles.Entries(id) {
			if !uids[e.UID] {
				d.roles.Remove(id, e.UID)
			}
		}
	}

	var out []rules.Record
	for _, u := range units {
		h := d.refreshUnit(u)
		if h.Text() == "" {
			continue
		}
		out = append(out, rules.Record{
			ID:     len(out) + 1,
			Unit:   u.Key,
			Text:   h.Text(),
			Manual: d.manual[u.Key],
		})
	}
	d.rules = out
	d.syncPRules()

	d.log.Debug().Int("units", len(units)).Int("rules", len(out)).Msg("rules rebuilt")
	return d.Rules()
}

// refreshUnit writes the derived text into the unit's rule holder unless
// the unit is in manual mode.
func (d *Document) refreshUnit(unit *Node) *Node {
	h := ensureRuleHolder(unit)
	d.indexSubtree(h, PathOf(h))
	mode, _ := h.Attr(RuleModeAttr)
	if d.manual[unit.Key] {
		mode.Value = Text(ModeManual)
		return h
	}
	mode.Value = Text(ModeAutomatic)
	if text, ok := d.DeriveRuleText(unit.Key); ok {
		h.Value = Text(text)
	} else {
		h.Value = nil
	}
	return h
}

// syncPRules regenerates the PRule items of the PRules container from the
// current rule list, keeping notes typed against the same unit.
func (d *Document) syncPRules() {
	var container *Node
	walk(d.root, func(n *Node) bool {
		if container != nil {
			return false
		}
		if n.Name == PRulesName && n.IsContainer() {
			container = n
			return false
		}
		return true
	})
	if container == nil {
		return
	}

	notes := make(map[string]string)
	for _, item := range container.children.list() {
		unit := fieldText(item, "PRuleUnit")
		if n := fieldText(item, "PRuleNotes"); unit != "" && n != "" {
			notes[unit] = n
		}
		d.unindex(PathOf(item))
		container.children.remove(item.Key)
		item.parent = nil
	}

	for _, r := range d.rules {
		item, ok := d.instantiate(PRuleName, nil)
		if !ok {
			d.log.Debug().Msg("rules: no PRule template, PRules left empty")
			return
		}
		item.Key = PRuleName + "_" + strconv.Itoa(r.ID)
		setField(item, "PRuleId", strconv.Itoa(r.ID))
		setField(item, "PRuleText", r.Text)
		setField(item, "PRuleUnit", r.Unit)
		setField(item, "PRuleNotes", notes[r.Unit])
		d.insert(container, item)
	}
}

func (d *Document) units() []*Node {
	var out []*Node
	walk(d.root, func(n *Node) bool {
		if n.Name == LogicalUnitName && n.IsContainer() {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func (d *Document) unit(id string) (*Node, bool) {
	for _, u := range d.units() {
		if u.Key == id {
			return u, true
		}
	}
	return nil, false
}

// unitUIDs collects the relation and condition uids present in a unit.
func unitUIDs(unit *Node) map[string]bool {
	out := make(map[string]bool)
	walkAll(unit, func(c *Node) {
		if roleBearing[c.Name] && c.Text() != "" {
			out[c.Text()] = true
		}
	})
	return out
}

func fieldText(n *Node, name string) string {
	if c, ok := n.Child(name); ok {
		return c.Text()
	}
	return ""
}

func setField(n *Node, name, v string) {
	c, ok := n.Child(name)
	if !ok || c.IsContainer() {
		return
	}
	if v == "" {
		c.Value = nil
		return
	}
	c.Value = Text(v)
}
