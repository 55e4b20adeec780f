// Package document holds the live instance tree built from a schema model:
// templates for repeated items, the path index, identifier generation, the
// edit operations and the logical-rule bookkeeping that feeds export.
package document

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/sbenjam1n/xsdform/internal/rules"
	"github.com/sbenjam1n/xsdform/internal/schema"
)

// Document is one editable instance of a schema. It owns its tree, index,
// templates and rule state; nothing is shared between documents.
type Document struct {
	model     *schema.Model
	root      *Node
	index     map[string]*Node
	templates map[string]*Node

	roles  *rules.RoleMap
	manual map[string]bool
	rules  []rules.Record

	ids        *idGenerator
	log        zerolog.Logger
	clock      func() time.Time
	lastSuffix int64
}

// Option configures Load.
type Option func(*Document)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Document) { d.log = l }
}

// WithRand sets the source used for generated identifiers.
func WithRand(r *rand.Rand) Option {
	return func(d *Document) { d.ids.rnd = r }
}

// WithClock sets the time source used for generated item keys.
func WithClock(now func() time.Time) Option {
	return func(d *Document) { d.clock = now }
}

// Load builds a document from the first top-level element of the model,
// captures templates for repeated items, fills identifiers and indexes every
// path. A model without elements yields a document without a root.
func Load(model *schema.Model, opts ...Option) *Document {
	d := &Document{
		model:     model,
		templates: make(map[string]*Node),
		roles:     rules.NewRoleMap(),
		manual:    make(map[string]bool),
		ids:       newIDGenerator(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))),
		log:       zerolog.Nop(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if model == nil || len(model.Elements) == 0 {
		d.log.Debug().Msg("schema has no elements, document left empty")
		d.index = make(map[string]*Node)
		return d
	}

	d.root = newBuilder(model).element(model.Elements[0])
	d.captureTemplates(d.root)
	d.ids.reserve(d.root)
	d.prepare(d.root)
	d.Reindex()

	d.log.Debug().
		Str("root", d.root.Key).
		Int("paths", len(d.index)).
		Int("templates", len(d.templates)).
		Msg("document loaded")
	return d
}

// Model returns the type model the document was built from.
func (d *Document) Model() *schema.Model { return d.model }

// Root returns the root node, nil for an empty document.
func (d *Document) Root() *Node { return d.root }

// Node resolves a dotted path.
func (d *Document) Node(path string) (*Node, bool) {
	return d.resolve(path)
}

// Paths returns every indexed path in sorted order.
func (d *Document) Paths() []string {
	out := make([]string, 0, len(d.index))
	for p := range d.index {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Choices returns the literals a leaf's declared type enumerates. They are
// offered to the editor only; SetValue does not enforce them.
func (d *Document) Choices(path string) []string {
	n, ok := d.resolve(path)
	if !ok || n.IsContainer() {
		return nil
	}
	return d.model.Enumerations(n.Decl)
}

// Template returns a copy of the template captured for kind.
func (d *Document) Template(kind string) (*Node, bool) {
	t, ok := d.templates[kind]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Rules returns the rule records of the last RebuildRules pass.
func (d *Document) Rules() []rules.Record {
	return append([]rules.Record(nil), d.rules...)
}

// Roles returns the role tags of a logical unit in edit order.
func (d *Document) Roles(unitID string) []rules.Entry {
	return d.roles.Entries(unitID)
}

// Role returns the tag of uid in the logical unit unitID.
func (d *Document) Role(unitID, uid string) (rules.Role, bool) {
	return d.roles.Role(unitID, uid)
}

// RoleUnits returns the logical units that carry at least one role tag.
func (d *Document) RoleUnits() []string {
	return d.roles.Units()
}

// IsManual reports whether the unit's rule text was typed by hand.
func (d *Document) IsManual(unitID string) bool {
	return d.manual[unitID]
}

// Clone returns an independent deep copy. Edits on the copy never reach d.
func (d *Document) Clone() *Document {
	c := &Document{
		model:      d.model,
		templates:  make(map[string]*Node, len(d.templates)),
		roles:      d.roles.Clone(),
		manual:     make(map[string]bool, len(d.manual)),
		rules:      append([]rules.Record(nil), d.rules...),
		ids:        d.ids.fork(),
		log:        d.log,
		clock:      d.clock,
		lastSuffix: d.lastSuffix,
	}
	for k, t := range d.templates {
		c.templates[k] = t.Clone()
	}
	for k, v := range d.manual {
		c.manual[k] = v
	}
	if d.root != nil {
		c.root = d.root.Clone()
	}
	c.Reindex()
	return c
}
