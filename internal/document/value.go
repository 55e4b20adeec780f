package document

// Value is the assigned value of a node: Text for scalars, *Record for
// structured kinds. A nil Value means no value.
type Value interface {
	isValue()
}

// Text is a scalar value.
type Text string

func (Text) isValue() {}

// Pair is one named text entry of a record.
type Pair struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Field is one record field holding either text or a nested record.
type Field struct {
	Name   string  `yaml:"name" json:"name"`
	Text   string  `yaml:"text,omitempty" json:"text,omitempty"`
	Record *Record `yaml:"record,omitempty" json:"record,omitempty"`
}

// Record is a structured value assigned to a complex node as a whole.
type Record struct {
	Attrs  []Pair  `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

func (*Record) isValue() {}

// Empty reports whether the record carries no non-empty text anywhere.
func (r *Record) Empty() bool {
	if r == nil {
		return true
	}
	for _, a := range r.Attrs {
		if a.Value != "" {
			return false
		}
	}
	for _, f := range r.Fields {
		if f.Text != "" || !f.Record.Empty() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{Attrs: append([]Pair(nil), r.Attrs...)}
	for _, f := range r.Fields {
		f.Record = f.Record.Clone()
		c.Fields = append(c.Fields, f)
	}
	return c
}

// Attr returns the value of a record attribute.
func (r *Record) Attr(name string) string {
	if r == nil {
		return ""
	}
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// FieldText returns the text of a record field.
func (r *Record) FieldText(name string) string {
	if r == nil {
		return ""
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Text
		}
	}
	return ""
}

func cloneValue(v Value) Value {
	if r, ok := v.(*Record); ok {
		return r.Clone()
	}
	return v
}
