// Package editscript applies YAML edit scripts to a document. Each edit maps
// onto one document operation; string fields may reference the current text
// of another node as ${path}.
package editscript

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/rules"
)

// Operation names.
const (
	OpSet       = "set"
	OpAdd       = "add"
	OpCopy      = "copy"
	OpRemove    = "remove"
	OpSelect    = "select"
	OpRole      = "role"
	OpClearRole = "clear-role"
)

var (
	ErrUnknownOp    = errors.New("unknown operation")
	ErrMissingField = errors.New("missing field")
	ErrUnresolved   = errors.New("unresolved reference")
)

// Script is a list of edits applied in order.
type Script struct {
	Edits []Edit `yaml:"edits"`
}

// Edit is one operation. Which fields apply depends on Op.
type Edit struct {
	Op     string           `yaml:"op"`
	Path   string           `yaml:"path,omitempty"`
	Value  *string          `yaml:"value,omitempty"`
	Record *document.Record `yaml:"record,omitempty"`
	Kind   string           `yaml:"kind,omitempty"`
	Key    string           `yaml:"key,omitempty"`
	Branch string           `yaml:"branch,omitempty"`
	Unit   string           `yaml:"unit,omitempty"`
	UID    string           `yaml:"uid,omitempty"`
	Role   string           `yaml:"role,omitempty"`
}

// Outcome records what one edit did.
type Outcome struct {
	Index   int    `json:"index"`
	Op      string `json:"op"`
	Applied bool   `json:"applied"`
	// Key is the key of the created item for add and copy.
	Key string `json:"key,omitempty"`
}

// Report summarizes an Apply run. Edits that resolved to no-ops are counted
// as skipped.
type Report struct {
	Applied  int       `json:"applied"`
	Skipped  int       `json:"skipped"`
	Outcomes []Outcome `json:"outcomes"`
}

// ParseFile reads and parses a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edit script %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse edit script: %w", err)
	}
	return &s, nil
}

// Check verifies that the edit names a known operation and carries the
// fields that operation needs.
func (e Edit) Check() error {
	var need map[string]string
	switch e.Op {
	case OpSet:
		if e.Value == nil && e.Record == nil {
			return fmt.Errorf("%w: value or record", ErrMissingField)
		}
		need = map[string]string{"path": e.Path}
	case OpAdd:
		need = map[string]string{"path": e.Path, "kind": e.Kind}
	case OpCopy, OpRemove:
		need = map[string]string{"path": e.Path, "key": e.Key}
	case OpSelect:
		need = map[string]string{"path": e.Path, "branch": e.Branch}
	case OpRole:
		need = map[string]string{"unit": e.Unit, "uid": e.UID, "role": e.Role}
		if e.Role != "" {
			if _, err := rules.ParseRole(e.Role); err != nil {
				return err
			}
		}
	case OpClearRole:
		need = map[string]string{"unit": e.Unit, "uid": e.UID}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	for _, name := range []string{"path", "kind", "key", "branch", "unit", "uid", "role"} {
		if v, ok := need[name]; ok && v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	return nil
}

// Apply runs every edit against doc in order and stops at the first edit
// that is malformed or references a node that does not exist.
func Apply(doc *document.Document, s *Script) (*Report, error) {
	rep := &Report{}
	for i, e := range s.Edits {
		if err := e.Check(); err != nil {
			return rep, fmt.Errorf("edit %d: %w", i, err)
		}
		resolved, err := substitute(doc, e)
		if err != nil {
			return rep, fmt.Errorf("edit %d: %w", i, err)
		}
		out, err := apply(doc, resolved)
		if err != nil {
			return rep, fmt.Errorf("edit %d: %w", i, err)
		}
		out.Index = i
		out.Op = e.Op
		rep.Outcomes = append(rep.Outcomes, out)
		if out.Applied {
			rep.Applied++
		} else {
			rep.Skipped++
		}
	}
	return rep, nil
}

func apply(doc *document.Document, e Edit) (Outcome, error) {
	var out Outcome
	switch e.Op {
	case OpSet:
		var v document.Value
		if e.Record != nil {
			v = e.Record
		} else {
			v = document.Text(*e.Value)
		}
		out.Applied = doc.SetValue(e.Path, v)
	case OpAdd:
		out.Key, out.Applied = doc.AddChild(e.Path, e.Kind, e.Key)
	case OpCopy:
		out.Key, out.Applied = doc.CopyChild(e.Path, e.Key)
	case OpRemove:
		out.Applied = doc.RemoveChild(e.Path, e.Key)
	case OpSelect:
		out.Applied = doc.Select(e.Path, e.Branch)
	case OpRole:
		role, err := rules.ParseRole(e.Role)
		if err != nil {
			return out, err
		}
		if err := doc.RecordRole(e.Unit, e.UID, role); err != nil {
			return out, err
		}
		r, ok := doc.Role(e.Unit, e.UID)
		out.Applied = ok && r == role
	case OpClearRole:
		out.Applied = doc.ClearRole(e.Unit, e.UID)
	default:
		return out, fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	return out, nil
}

var reference = regexp.MustCompile(`\$\{([^}]+)\}`)

// substitute replaces ${path} references in the edit's string fields with
// the current text at that path.
func substitute(doc *document.Document, e Edit) (Edit, error) {
	var firstErr error
	expand := func(s string) string {
		return reference.ReplaceAllStringFunc(s, func(m string) string {
			path := reference.FindStringSubmatch(m)[1]
			n, ok := doc.Node(path)
			if !ok {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: %s", ErrUnresolved, path)
				}
				return m
			}
			return n.Text()
		})
	}

	e.Path = expand(e.Path)
	e.Key = expand(e.Key)
	e.Unit = expand(e.Unit)
	e.UID = expand(e.UID)
	e.Branch = expand(e.Branch)
	if e.Value != nil {
		v := expand(*e.Value)
		e.Value = &v
	}
	return e, firstErr
}
