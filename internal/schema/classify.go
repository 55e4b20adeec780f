package schema

// SpecialKind marks complex kinds the codec serializes differently.
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	// SpecialRichContent is an extension of ReqElement carrying free text,
	// tables, graphics or formulas.
	SpecialRichContent
	// SpecialStructured is a complex kind whose value may be assigned as
	// a whole record, e.g. an identification picked from a catalog.
	SpecialStructured
)

// RichContentBase is the extension base of rich-content elements.
const RichContentBase = "ReqElement"

// StructuredKinds lists the complex type names treated as structured values.
var StructuredKinds = map[string]bool{
	"KSIIdentification": true,
	"Condition":         true,
	"Organization":      true,
	"Link":              true,
}

// Special classifies a declaration.
func (m *Model) Special(n *TypeNode) SpecialKind {
	if n == nil {
		return SpecialNone
	}
	if n.Type == RichContentBase {
		return SpecialRichContent
	}
	if ct, ok := m.ComplexOf(n); ok && m.Extends(ct, RichContentBase) {
		return SpecialRichContent
	}
	if StructuredKinds[n.Type] {
		return SpecialStructured
	}
	return SpecialNone
}

// ScalarClass drives value formatting on export.
type ScalarClass int

const (
	ScalarString ScalarClass = iota
	// ScalarRestricted is a string narrowed by an enumeration or pattern.
	ScalarRestricted
	ScalarDate
	ScalarDateTime
	ScalarTime
	ScalarOther
)

var builtinClasses = map[string]ScalarClass{
	"xs:string":           ScalarString,
	"xs:normalizedString": ScalarString,
	"xs:token":            ScalarString,
	"xs:anyType":          ScalarString,
	"xs:anySimpleType":    ScalarString,
	"xs:date":             ScalarDate,
	"xs:dateTime":         ScalarDateTime,
	"xs:time":             ScalarTime,
}

// Scalar classifies the value space of a declaration. Undeclared types are
// generic strings; complex types classify as ScalarOther.
func (m *Model) Scalar(n *TypeNode) ScalarClass {
	if n == nil {
		return ScalarString
	}
	if n.Simple != nil {
		return m.simpleClass(n.Simple, map[string]bool{})
	}
	if n.Complex != nil {
		return ScalarOther
	}
	if n.Type == "" {
		return ScalarString
	}
	if IsBuiltin(n.Type) {
		return builtinClass(n.Type)
	}
	if st, ok := m.LookupSimple(n.Type); ok {
		return m.simpleClass(st, map[string]bool{n.Type: true})
	}
	return ScalarOther
}

// Enumerations returns the allowed literals of a declaration, if any.
func (m *Model) Enumerations(n *TypeNode) []string {
	if n == nil {
		return nil
	}
	st := n.Simple
	if st == nil {
		st, _ = m.LookupSimple(n.Type)
	}
	if st == nil {
		return nil
	}
	return st.Enumerations
}

// Pattern returns the pattern facet of a declaration, if any.
func (m *Model) Pattern(n *TypeNode) string {
	if n == nil {
		return ""
	}
	st := n.Simple
	if st == nil {
		st, _ = m.LookupSimple(n.Type)
	}
	if st == nil {
		return ""
	}
	return st.Pattern
}

func (m *Model) simpleClass(st *SimpleTypeDef, seen map[string]bool) ScalarClass {
	restricted := len(st.Enumerations) > 0 || st.Pattern != ""
	class := ScalarString
	switch {
	case st.Base == "":
	case IsBuiltin(st.Base):
		class = builtinClass(st.Base)
	case !seen[st.Base]:
		seen[st.Base] = true
		if base, ok := m.LookupSimple(st.Base); ok {
			class = m.simpleClass(base, seen)
		}
	}
	if restricted && class == ScalarString {
		return ScalarRestricted
	}
	return class
}

func builtinClass(tag string) ScalarClass {
	if c, ok := builtinClasses[tag]; ok {
		return c
	}
	return ScalarOther
}
