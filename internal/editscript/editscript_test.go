package editscript

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/rules"
	"github.com/sbenjam1n/xsdform/internal/xsd"
)

func loadFixture(t *testing.T) *document.Document {
	t.Helper()
	m, err := xsd.ParseFile(filepath.Join("..", "..", "testdata", "requirement.xsd"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return document.Load(m, document.WithRand(rand.New(rand.NewPCG(3, 5))))
}

func TestApplyFixtureScript(t *testing.T) {
	d := loadFixture(t)
	s, err := ParseFile(filepath.Join("..", "..", "testdata", "edits.yaml"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	rep, err := Apply(d, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rep.Skipped != 0 || rep.Applied != len(s.Edits) {
		t.Errorf("report = %+v", rep)
	}

	entity, _ := d.Node("Requirement.DMODEL.LogicalUnits.Main.Entities.Car.EntityUid")
	source, _ := d.Node("Requirement.DMODEL.LogicalUnits.Main.Relations.Brakes.RelationSource")
	if source.Text() != entity.Text() {
		t.Errorf("reference not substituted: %q vs %q", source.Text(), entity.Text())
	}

	entries := d.Roles("Main")
	if len(entries) != 2 || entries[0].Role != rules.Premise || entries[1].Role != rules.Consequence {
		t.Errorf("roles = %+v", entries)
	}
	text, ok := d.DeriveRuleText("Main")
	if !ok || !strings.HasPrefix(text, "IF (Condition") {
		t.Errorf("rule = %q", text)
	}
}

func TestApplyReportsNoops(t *testing.T) {
	d := loadFixture(t)
	s, err := Parse([]byte(`
edits:
  - op: add
    path: Requirement.Nowhere
    kind: Entity
  - op: remove
    path: Requirement.MDATA
    key: DocName
  - op: set
    path: Requirement.MDATA.DocName
    value: ok
`))
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Apply(d, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if rep.Applied != 1 || rep.Skipped != 2 {
		t.Errorf("report = %+v", rep)
	}
	if rep.Outcomes[0].Applied || !rep.Outcomes[2].Applied {
		t.Errorf("outcomes = %+v", rep.Outcomes)
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown op", "edits:\n  - op: rename\n    path: X\n", ErrUnknownOp},
		{"missing path", "edits:\n  - op: add\n    kind: Entity\n", ErrMissingField},
		{"missing value", "edits:\n  - op: set\n    path: Requirement.Notes\n", ErrMissingField},
		{"bad role", "edits:\n  - op: role\n    unit: U\n    uid: a\n    role: maybe\n", rules.ErrInvalidRole},
		{"dangling reference", "edits:\n  - op: set\n    path: Requirement.Notes\n    value: ${Requirement.Missing}\n", ErrUnresolved},
	}
	for _, tt := range tests {
		s, err := Parse([]byte(tt.src))
		if err != nil {
			t.Fatalf("%s: parse: %v", tt.name, err)
		}
		_, err = Apply(loadFixture(t), s)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
		if err != nil && !strings.HasPrefix(err.Error(), "edit 0: ") {
			t.Errorf("%s: error should name the edit, got %q", tt.name, err)
		}
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	if _, err := Parse([]byte("edits: [")); err == nil {
		t.Error("expected a parse error")
	}
}
