package validator

import (
	"fmt"

	"github.com/sbenjam1n/xsdform/internal/codec"
	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/editscript"
)

// Result is the outcome of running a validation tier.
type Result struct {
	Tier    int      `json:"tier"`
	Passed  bool     `json:"passed"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
}

// Detail describes a single validation check result.
type Detail struct {
	Check    string `json:"check"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Fix      string `json:"fix,omitempty"` // set for every failing check
}

// Validate runs Tier 0 (script structure), Tier 1 (dry run on a copy of
// the document) and Tier 2 (export of the dry-run result). The document
// itself is never modified.
func Validate(doc *document.Document, s *editscript.Script) *Result {
	if result := Tier0Structural(s); !result.Passed {
		return result
	}
	dry := doc.Clone()
	if result := Tier1DryRun(dry, s); !result.Passed {
		return result
	}
	return Tier2Export(dry)
}

// Tier0Structural checks that every edit names a known operation and
// carries the fields it needs.
func Tier0Structural(s *editscript.Script) *Result {
	result := &Result{Tier: 0, Passed: true}

	if s == nil || len(s.Edits) == 0 {
		result.Passed = false
		result.Code = 1
		result.Message = "Edit script is empty"
		result.Details = append(result.Details, Detail{
			Check:    "script_not_empty",
			Passed:   false,
			Expected: "at least one edit",
			Got:      "0 edits",
			Fix:      "Add an 'edits:' list with at least one operation.",
		})
		return result
	}

	for i, e := range s.Edits {
		if err := e.Check(); err != nil {
			result.Passed = false
			result.Code = 2
			result.Message = fmt.Sprintf("Edit %d is malformed", i)
			result.Details = append(result.Details, Detail{
				Check:    fmt.Sprintf("edit_%d_structure", i),
				Passed:   false,
				Expected: "known op with its required fields",
				Got:      err.Error(),
				Fix:      "Ops are set, add, copy, remove, select, role and clear-role; see the edit script format for their fields.",
			})
		}
	}
	if !result.Passed {
		if len(result.Details) > 1 {
			result.Message = fmt.Sprintf("%d edits are malformed", len(result.Details))
		}
		return result
	}

	result.Message = "Tier 0 passed"
	return result
}

// Tier1DryRun applies the edits one by one to doc, which should be a copy,
// and reports every edit that errors or leaves the tree unchanged.
func Tier1DryRun(doc *document.Document, s *editscript.Script) *Result {
	result := &Result{Tier: 1, Passed: true}

	for i, e := range s.Edits {
		rep, err := editscript.Apply(doc, &editscript.Script{Edits: []editscript.Edit{e}})
		switch {
		case err != nil:
			result.Passed = false
			result.Code = -1
			result.Message = fmt.Sprintf("Edit %d (%s) failed", i, e.Op)
			result.Details = append(result.Details, Detail{
				Check:    fmt.Sprintf("edit_%d_applies", i),
				Passed:   false,
				Expected: "edit applies",
				Got:      err.Error(),
				Fix:      fixFor(e),
			})
			return result
		case rep.Skipped > 0:
			result.Passed = false
			result.Code = -2
			result.Details = append(result.Details, Detail{
				Check:    fmt.Sprintf("edit_%d_applies", i),
				Passed:   false,
				Expected: "edit changes the document",
				Got:      "no-op",
				Fix:      fixFor(e),
			})
		default:
			result.Details = append(result.Details, Detail{
				Check:  fmt.Sprintf("edit_%d_applies", i),
				Passed: true,
			})
		}
	}

	if !result.Passed {
		result.Message = fmt.Sprintf("%d edit(s) had no effect", countFailed(result.Details))
		return result
	}
	result.Message = "Tier 1 passed"
	return result
}

// Tier2Export checks that the edited document serializes.
func Tier2Export(doc *document.Document) *Result {
	result := &Result{Tier: 2, Passed: true}
	if _, err := codec.Serialize(doc); err != nil {
		result.Passed = false
		result.Code = -3
		result.Message = "Export failed"
		result.Details = append(result.Details, Detail{
			Check:    "export",
			Passed:   false,
			Expected: "document serializes",
			Got:      err.Error(),
			Fix:      "Check that the schema declares a named root element.",
		})
		return result
	}
	result.Message = "Tier 2 passed"
	return result
}

func fixFor(e editscript.Edit) string {
	switch e.Op {
	case editscript.OpSet:
		return fmt.Sprintf("Check that %s exists (run: xsdform tree) and takes this kind of value.", e.Path)
	case editscript.OpAdd:
		return fmt.Sprintf("Check that %s is a container and that %s is an item kind it can hold.", e.Path, e.Kind)
	case editscript.OpCopy:
		return fmt.Sprintf("Check that %s has a child %s.", e.Path, e.Key)
	case editscript.OpRemove:
		return fmt.Sprintf("Only list items can be removed; %s under %s is not one.", e.Key, e.Path)
	case editscript.OpSelect:
		return fmt.Sprintf("Check that %s is a choice and %s one of its branches.", e.Path, e.Branch)
	case editscript.OpRole, editscript.OpClearRole:
		return fmt.Sprintf("Roles apply to relation and condition uids inside logical unit %s.", e.Unit)
	}
	return "Fix the edit and validate again."
}

func countFailed(details []Detail) int {
	n := 0
	for _, d := range details {
		if !d.Passed {
			n++
		}
	}
	return n
}
