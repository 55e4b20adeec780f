// Package xsd reads XML Schema documents into a schema.Model.
//
// Only the subset needed to drive form editing and export is understood:
// global and local elements, named and anonymous complex and simple types,
// sequence/all/choice compositors, attributes, complexContent extensions,
// enumeration and pattern facets and documentation annotations.
package xsd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/sbenjam1n/xsdform/internal/schema"
)

// ErrNotSchema is returned when the document root is not a schema element.
var ErrNotSchema = errors.New("document root is not xs:schema")

// ParseFile reads and parses a schema file.
func ParseFile(path string) (*schema.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses schema text into a type model. Declared charsets are read
// as they are, without conversion.
func Parse(data []byte) (*schema.Model, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xsd: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "schema" {
		return nil, ErrNotSchema
	}

	m := schema.NewModel()
	for _, el := range root.SelectElements("complexType") {
		if name := el.SelectAttrValue("name", ""); name != "" {
			m.ComplexTypes[name] = convertComplex(el)
		}
	}
	for _, el := range root.SelectElements("simpleType") {
		if name := el.SelectAttrValue("name", ""); name != "" {
			m.SimpleTypes[name] = convertSimple(el)
		}
	}
	m.Elements = convertElements(root)
	if err := checkBases(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkBases reports the first extension whose base is not a complex type
// of the schema. Element type references are left unchecked.
func checkBases(m *schema.Model) error {
	seen := make(map[*schema.ComplexTypeDef]bool)
	var check func(ct *schema.ComplexTypeDef) error
	check = func(ct *schema.ComplexTypeDef) error {
		if ct == nil || seen[ct] {
			return nil
		}
		seen[ct] = true
		if ct.Base != "" {
			if _, ok := m.LookupComplex(ct.Base); !ok {
				return fmt.Errorf("%w: %s extends %s", schema.ErrTypeNotFound, typeLabel(ct), ct.Base)
			}
		}
		for _, f := range ct.Fields {
			if err := check(f.Complex); err != nil {
				return err
			}
		}
		return nil
	}

	names := make([]string, 0, len(m.ComplexTypes))
	for name := range m.ComplexTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := check(m.ComplexTypes[name]); err != nil {
			return err
		}
	}
	for _, e := range m.Elements {
		if err := check(e.Complex); err != nil {
			return err
		}
	}
	return nil
}

func typeLabel(ct *schema.ComplexTypeDef) string {
	if ct.Name == "" {
		return "anonymous type"
	}
	return ct.Name
}

func convertElement(e *etree.Element) *schema.TypeNode {
	n := &schema.TypeNode{
		Name:       e.SelectAttrValue("name", ""),
		Type:       normalizeType(e.SelectAttrValue("type", "")),
		Occurs:     parseOccurs(e.SelectAttrValue("minOccurs", ""), e.SelectAttrValue("maxOccurs", "")),
		Annotation: documentation(e),
		Default:    e.SelectAttrValue("default", ""),
		Fixed:      e.SelectAttrValue("fixed", ""),
	}
	if ct := e.SelectElement("complexType"); ct != nil {
		n.Complex = convertComplex(ct)
	}
	if st := e.SelectElement("simpleType"); st != nil {
		n.Simple = convertSimple(st)
	}
	return n
}

func convertComplex(c *etree.Element) *schema.ComplexTypeDef {
	ct := &schema.ComplexTypeDef{
		Name:       c.SelectAttrValue("name", ""),
		Annotation: documentation(c),
	}
	ct.Content, ct.Fields = convertGroups(c)
	ct.Attributes = convertAttributes(c)

	if cc := c.SelectElement("complexContent"); cc != nil {
		if ext := cc.SelectElement("extension"); ext != nil {
			ct.Base = normalizeType(ext.SelectAttrValue("base", ""))
			content, fields := convertGroups(ext)
			if content != schema.ContentEmpty {
				ct.Content = content
			}
			ct.Fields = append(ct.Fields, fields...)
			ct.Attributes = append(ct.Attributes, convertAttributes(ext)...)
		}
	}
	return ct
}

// convertGroups reads the first compositor under parent, sequence first.
func convertGroups(parent *etree.Element) (schema.Content, []*schema.TypeNode) {
	groups := []struct {
		tag     string
		content schema.Content
	}{
		{"sequence", schema.ContentSequence},
		{"all", schema.ContentAll},
		{"choice", schema.ContentChoice},
	}
	for _, g := range groups {
		if el := parent.SelectElement(g.tag); el != nil {
			return g.content, convertElements(el)
		}
	}
	return schema.ContentEmpty, nil
}

func convertElements(parent *etree.Element) []*schema.TypeNode {
	var out []*schema.TypeNode
	for _, el := range parent.SelectElements("element") {
		if el.SelectAttrValue("name", "") == "" {
			continue
		}
		out = append(out, convertElement(el))
	}
	return out
}

func convertAttributes(parent *etree.Element) []*schema.TypeNode {
	var out []*schema.TypeNode
	for _, a := range parent.SelectElements("attribute") {
		name := a.SelectAttrValue("name", "")
		if name == "" {
			continue
		}
		use := a.SelectAttrValue("use", "optional")
		n := &schema.TypeNode{
			Name:       name,
			Type:       normalizeType(a.SelectAttrValue("type", "")),
			Occurs:     schema.Occurs{Min: 0, Max: 1},
			Annotation: documentation(a),
			Default:    a.SelectAttrValue("default", ""),
			Fixed:      a.SelectAttrValue("fixed", ""),
			Use:        use,
		}
		if use == "required" {
			n.Occurs.Min = 1
		}
		if st := a.SelectElement("simpleType"); st != nil {
			n.Simple = convertSimple(st)
		}
		out = append(out, n)
	}
	return out
}

func convertSimple(s *etree.Element) *schema.SimpleTypeDef {
	st := &schema.SimpleTypeDef{Name: s.SelectAttrValue("name", "")}
	if r := s.SelectElement("restriction"); r != nil {
		st.Base = normalizeType(r.SelectAttrValue("base", ""))
		for _, e := range r.SelectElements("enumeration") {
			st.Enumerations = append(st.Enumerations, e.SelectAttrValue("value", ""))
		}
		if p := r.SelectElement("pattern"); p != nil {
			st.Pattern = p.SelectAttrValue("value", "")
		}
	}
	return st
}

// documentation joins the non-empty documentation texts of el's annotation.
func documentation(el *etree.Element) string {
	a := el.SelectElement("annotation")
	if a == nil {
		return ""
	}
	var parts []string
	for _, d := range a.SelectElements("documentation") {
		if t := strings.TrimSpace(d.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func parseOccurs(minStr, maxStr string) schema.Occurs {
	o := schema.Occurs{Min: 1, Max: 1}
	if v, err := strconv.Atoi(strings.TrimSpace(minStr)); err == nil {
		o.Min = v
	}
	switch maxStr = strings.TrimSpace(maxStr); maxStr {
	case "":
	case "unbounded":
		o.Max = schema.Unbounded
	default:
		if v, err := strconv.Atoi(maxStr); err == nil {
			o.Max = v
		}
	}
	return o
}

var builtinTypes = map[string]bool{
	"string": true, "normalizedString": true, "token": true, "boolean": true,
	"decimal": true, "integer": true, "int": true, "long": true, "short": true,
	"byte": true, "float": true, "double": true, "nonNegativeInteger": true,
	"positiveInteger": true, "date": true, "dateTime": true, "time": true,
	"duration": true, "anyURI": true, "ID": true, "IDREF": true, "QName": true,
	"base64Binary": true, "hexBinary": true, "gYear": true, "language": true,
	"anyType": true, "anySimpleType": true, "NMTOKEN": true, "Name": true,
}

// normalizeType strips namespace prefixes from type references; built-in
// types keep a canonical "xs:" prefix.
func normalizeType(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	prefix, local, found := strings.Cut(ref, ":")
	if !found {
		return ref
	}
	if builtinTypes[local] && (prefix == "xs" || prefix == "xsd") {
		return "xs:" + local
	}
	return local
}
