package schema

import (
	"errors"
	"strings"
)

// ErrTypeNotFound is returned when a schema extends a complex type it does
// not define. Lookups themselves report absence with a boolean.
var ErrTypeNotFound = errors.New("type not found")

// Unbounded is the Max value of an occurrence range with maxOccurs="unbounded".
const Unbounded = -1

// Occurs is the occurrence range declared for an element.
type Occurs struct {
	Min int
	Max int
}

// Repeatable reports whether more than one occurrence is allowed.
func (o Occurs) Repeatable() bool {
	return o.Max == Unbounded || o.Max > 1
}

// Content is the discriminant of a complex type's field group.
type Content int

const (
	ContentEmpty Content = iota
	ContentSequence
	ContentAll
	ContentChoice
)

// String returns the XSD compositor name.
func (c Content) String() string {
	switch c {
	case ContentSequence:
		return "sequence"
	case ContentAll:
		return "all"
	case ContentChoice:
		return "choice"
	default:
		return "empty"
	}
}

// TypeNode describes one element or attribute declaration.
type TypeNode struct {
	Name string
	// Type is a scalar tag such as "xs:date" or the name of a named
	// complex or simple type. Empty when the type is declared inline.
	Type       string
	Complex    *ComplexTypeDef
	Simple     *SimpleTypeDef
	Occurs     Occurs
	Annotation string
	Default    string
	Fixed      string
	Use        string // attributes only: "required" or "optional"
}

// Initial returns the value an instance starts with: the fixed value if
// declared, otherwise the default.
func (n *TypeNode) Initial() string {
	if n.Fixed != "" {
		return n.Fixed
	}
	return n.Default
}

// ComplexTypeDef is a named or anonymous complex type.
type ComplexTypeDef struct {
	Name       string
	Content    Content
	Fields     []*TypeNode
	Attributes []*TypeNode
	// Base names the complex type this one extends. Its fields and
	// attributes are merged in, local declarations winning.
	Base       string
	Annotation string
}

// SimpleTypeDef is a restriction of a scalar base type.
type SimpleTypeDef struct {
	Name         string
	Base         string
	Enumerations []string
	Pattern      string
}

// Model is the immutable type model of one loaded schema.
type Model struct {
	Elements     []*TypeNode
	ComplexTypes map[string]*ComplexTypeDef
	SimpleTypes  map[string]*SimpleTypeDef
}

// NewModel returns an empty model ready to be filled by a schema reader.
func NewModel() *Model {
	return &Model{
		ComplexTypes: make(map[string]*ComplexTypeDef),
		SimpleTypes:  make(map[string]*SimpleTypeDef),
	}
}

// IsBuiltin reports whether a type name refers to a built-in XSD type.
func IsBuiltin(name string) bool {
	return strings.HasPrefix(name, "xs:")
}
