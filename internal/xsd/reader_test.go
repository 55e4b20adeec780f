package xsd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sbenjam1n/xsdform/internal/schema"
)

func TestParseFileRequirement(t *testing.T) {
	m, err := ParseFile(filepath.Join("..", "..", "testdata", "requirement.xsd"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(m.Elements) != 1 || m.Elements[0].Name != "Requirement" {
		t.Fatalf("expected a single Requirement root, got %d elements", len(m.Elements))
	}

	root := m.Elements[0]
	if root.Annotation != "Formalized requirement" {
		t.Errorf("root annotation = %q", root.Annotation)
	}
	if root.Complex == nil || root.Complex.Content != schema.ContentSequence {
		t.Fatal("root should carry an inline sequence")
	}

	table, ok := m.LookupComplex("TableElementType")
	if !ok {
		t.Fatal("TableElementType missing")
	}
	if table.Base != "ReqElement" {
		t.Errorf("TableElementType base = %q", table.Base)
	}
	fields := m.Fields(table)
	if len(fields) != 5 {
		t.Fatalf("TableElementType should expose 5 merged fields, got %d", len(fields))
	}
	if fields[2].Name != "ReqElementName" || fields[2].Annotation != "Table caption" {
		t.Errorf("local ReqElementName should replace the inherited one in place, got %q %q", fields[2].Name, fields[2].Annotation)
	}
	if attrs := m.Attributes(table); len(attrs) != 2 {
		t.Errorf("expected inherited attributes, got %d", len(attrs))
	}

	rel, _ := m.LookupComplex("RelationType")
	attrs := m.Attributes(rel)
	if len(attrs) != 1 || attrs[0].Type != "RelationKind" || attrs[0].Use != "optional" {
		t.Errorf("unexpected TypeOfRelation attribute: %+v", attrs)
	}

	uid, _ := m.Field(rel, "RelationUid")
	if got := m.Pattern(uid); got != "Relation([0-9]+)" {
		t.Errorf("RelationUid pattern = %q", got)
	}
	if got := m.Enumerations(attrs[0]); len(got) != 2 {
		t.Errorf("RelationKind enumerations = %v", got)
	}
}

func TestParseOccursAndDefaults(t *testing.T) {
	src := `<?xml version="1.0"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:t="urn:test">
  <xsd:element name="Root">
    <xsd:complexType>
      <xsd:choice>
        <xsd:element name="A" type="xsd:date" minOccurs="0"/>
        <xsd:element name="B" type="t:Custom" maxOccurs="unbounded" default="x"/>
        <xsd:element name="C" type="xsd:string" maxOccurs="3" fixed="y"/>
      </xsd:choice>
      <xsd:attribute name="id" type="xsd:string" use="required"/>
    </xsd:complexType>
  </xsd:element>
</xsd:schema>`

	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ct := m.Elements[0].Complex
	if ct.Content != schema.ContentChoice {
		t.Fatalf("content = %v, want choice", ct.Content)
	}

	tests := []struct {
		name    string
		typ     string
		occurs  schema.Occurs
		initial string
	}{
		{"A", "xs:date", schema.Occurs{Min: 0, Max: 1}, ""},
		{"B", "Custom", schema.Occurs{Min: 1, Max: schema.Unbounded}, "x"},
		{"C", "xs:string", schema.Occurs{Min: 1, Max: 3}, "y"},
	}
	for i, tt := range tests {
		f := ct.Fields[i]
		if f.Name != tt.name || f.Type != tt.typ || f.Occurs != tt.occurs || f.Initial() != tt.initial {
			t.Errorf("field %d = %s %s %+v %q, want %s %s %+v %q",
				i, f.Name, f.Type, f.Occurs, f.Initial(), tt.name, tt.typ, tt.occurs, tt.initial)
		}
	}

	id := ct.Attributes[0]
	if id.Use != "required" || id.Occurs.Min != 1 {
		t.Errorf("required attribute = %+v", id)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`<root/>`)); !errors.Is(err, ErrNotSchema) {
		t.Errorf("expected ErrNotSchema, got %v", err)
	}
	if _, err := Parse([]byte(`<xs:schema`)); err == nil {
		t.Error("expected a parse error for truncated input")
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xsd")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseUnknownExtensionBase(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"named type", `<xs:complexType name="Child"><xs:complexContent><xs:extension base="Parent"/></xs:complexContent></xs:complexType>`, false},
		{"inline type", `<xs:element name="Root"><xs:complexType><xs:complexContent><xs:extension base="Parent"/></xs:complexContent></xs:complexType></xs:element>`, false},
		{"defined base", `<xs:complexType name="Parent"/><xs:complexType name="Child"><xs:complexContent><xs:extension base="Parent"/></xs:complexContent></xs:complexType>`, true},
	}
	for _, tt := range tests {
		src := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">` + tt.body + `</xs:schema>`
		_, err := Parse([]byte(src))
		if tt.ok {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, schema.ErrTypeNotFound) {
			t.Errorf("%s: expected ErrTypeNotFound, got %v", tt.name, err)
		}
	}
}
