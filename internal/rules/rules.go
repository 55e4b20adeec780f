// Package rules keeps premise/consequence role tags per logical unit and
// derives the implication text of each unit from them.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRole is returned for a role tag other than premise or consequence.
var ErrInvalidRole = errors.New("invalid role")

// Role tags a relation or condition inside a logical unit.
type Role string

const (
	Premise     Role = "premise"
	Consequence Role = "consequence"
)

// Valid reports whether r is one of the two known tags.
func (r Role) Valid() bool {
	return r == Premise || r == Consequence
}

// ParseRole converts a tag from user input.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Entry is one tagged uid.
type Entry struct {
	UID  string
	Role Role
}

// Record is one derived rule in the flat rule list.
type Record struct {
	ID     int    `json:"id" yaml:"id"`
	Unit   string `json:"unit" yaml:"unit"`
	Text   string `json:"text" yaml:"text"`
	Manual bool   `json:"manual" yaml:"manual"`
}

// Derive builds the rule text of a unit from its entries, in entry order.
// Without premises there is no rule.
func Derive(entries []Entry) (string, bool) {
	var premises, consequences []string
	for _, e := range entries {
		switch e.Role {
		case Premise:
			premises = append(premises, "("+e.UID+")")
		case Consequence:
			consequences = append(consequences, "("+e.UID+")")
		}
	}
	if len(premises) == 0 {
		return "", false
	}
	if len(consequences) == 0 {
		return strings.Join(premises, " AND "), true
	}
	return "IF " + strings.Join(premises, " AND ") + " THEN " + strings.Join(consequences, " AND "), true
}
