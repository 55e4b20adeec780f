package document

import (
	"regexp"
	"strings"
)

// Element names the editor treats specially. They come from the
// requirement schema family this model edits.
const (
	LogicalUnitName = "LogicalUnit"
	PRulesName      = "PRules"
	PRuleName       = "PRule"

	// RuleHolderName is the excluded leaf every logical unit carries for its
	// rule text. RuleModeAttr tells whether that text was typed or derived.
	RuleHolderName = "LogicalRule"
	RuleModeAttr   = "Mode"
	ModeManual     = "manual"
	ModeAutomatic  = "automatic"

	RichTypeAttr = "ReqElementType"
	RichUIDAttr  = "ReqElementUId"
)

// RichFields are the sub-fields of a rich-content element in export order.
var RichFields = []string{
	"ReqElementData",
	"ReqElementNumber",
	"ReqElementName",
	"ReqElementLink",
	"ReqElementNotes",
}

// RichTypes maps a rich-content element name to its ReqElementType literal.
var RichTypes = map[string]string{
	"GraphElement":   "графическое изображение",
	"TableElement":   "таблица",
	"FormulaElement": "формульная запись",
}

// dynamicContainers hold list items created at edit time. The single sample
// item the schema declares in each is captured as a template and removed.
var dynamicContainers = map[string]bool{
	"Entities":                 true,
	"Properties":               true,
	"Relations":                true,
	"LogicalUnits":             true,
	"KeyWords":                 true,
	"AuthorizedBy":             true,
	"ObjectsOfStandartization": true,
	"SecurityAspects":          true,
	"ObjectsOfReq":             true,
	"ReqObject":                true,
	"ReqLinks":                 true,
	"NeedDataLinks":            true,
	"GraphView":                true,
	"TableView":                true,
	"FormulasView":             true,
	"ReqElementObjects":        true,
	"PRules":                   true,
}

// conditionSlots are optional condition blocks inside properties and
// relations. Their templates are also registered under "Condition".
var conditionSlots = map[string]bool{
	"PropertyCond": true,
	"RelationCond": true,
}

const conditionKind = "Condition"

var removable = map[string]bool{
	"Entity":                  true,
	"Property":                true,
	"Relation":                true,
	"LogicalUnit":             true,
	"KeyWord":                 true,
	"Developer":               true,
	"ObjectOfStandartization": true,
	"SecurityAspect":          true,
	"ObjectOfReq":             true,
	"ReqLink":                 true,
	"NeedDataLink":            true,
	"GraphElement":            true,
	"TableElement":            true,
	"FormulaElement":          true,
	"PropertyCond":            true,
	"RelationCond":            true,
}

// protected identification fields are never removable on their own.
var protected = map[string]bool{
	"EntityID":   true,
	"PropertyID": true,
}

// roleBearing fields hold the uids that can be tagged premise or consequence.
var roleBearing = map[string]bool{
	"RelationUid":  true,
	"ConditionUid": true,
}

var identifierField = regexp.MustCompile(`(?i)uid$`)

// IsIdentifierField reports whether a field name marks an auto-generated id.
func IsIdentifierField(name string) bool {
	return identifierField.MatchString(name)
}

// IsRemovable reports whether items with this element name may be removed.
func IsRemovable(name string) bool {
	return removable[name] && !protected[name]
}

// IsDynamicContainer reports whether the named container grows at edit time.
func IsDynamicContainer(name string) bool {
	return dynamicContainers[name]
}

var patternFamilies = []struct {
	pattern string
	prefix  string
}{
	{"Object([0-9])+", "Object"},
	{"Relation([0-9]+)", "Relation"},
	{"Property([0-9])+", "Property"},
	{"Condition([0-9]+)", "Condition"},
}

var uidPrefixes = map[string]string{
	"GraphElement":   "Graph",
	"TableElement":   "Table",
	"FormulaElement": "Formula",
}

// uidPrefix picks the prefix of a generated identifier from the field's
// pattern, then the prefix table, then the owning element and field names.
func uidPrefix(pattern, owner, field string) string {
	for _, f := range patternFamilies {
		if strings.Contains(pattern, f.pattern) {
			return f.prefix
		}
	}
	if p, ok := uidPrefixes[owner]; ok {
		return p
	}
	if p, ok := uidPrefixes[field]; ok {
		return p
	}
	if owner != "" {
		return owner
	}
	if field != "" {
		return field
	}
	return "Uid"
}

// singular maps a container name to the item kind it holds.
func singular(kind string) string {
	switch {
	case strings.Contains(kind, "sOf"):
		return strings.Replace(kind, "sOf", "Of", 1)
	case strings.HasSuffix(kind, "ies"):
		return strings.TrimSuffix(kind, "ies") + "y"
	case strings.HasSuffix(kind, "s"):
		return strings.TrimSuffix(kind, "s")
	}
	return kind
}
