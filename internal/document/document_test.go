package document

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sbenjam1n/xsdform/internal/rules"
	"github.com/sbenjam1n/xsdform/internal/schema"
	"github.com/sbenjam1n/xsdform/internal/xsd"
)

const unitsPath = "Requirement.DMODEL.LogicalUnits"

func loadFixture(t *testing.T) *Document {
	t.Helper()
	m, err := xsd.ParseFile(filepath.Join("..", "..", "testdata", "requirement.xsd"))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Load(m,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return now }),
	)
}

func mustAdd(t *testing.T, d *Document, parent, kind string) string {
	t.Helper()
	key, ok := d.AddChild(parent, kind, "")
	if !ok {
		t.Fatalf("AddChild(%s, %s) failed", parent, kind)
	}
	return parent + "." + key
}

func text(t *testing.T, d *Document, path string) string {
	t.Helper()
	n, ok := d.Node(path)
	if !ok {
		t.Fatalf("path %s not found", path)
	}
	return n.Text()
}

func TestLoadCapturesTemplates(t *testing.T) {
	d := loadFixture(t)

	for _, kind := range []string{"LogicalUnit", "Entity", "Property", "Relation", "KeyWord", "GraphElement", "PRule", "PropertyCond", "RelationCond", "Condition"} {
		if _, ok := d.Template(kind); !ok {
			t.Errorf("template %s not captured", kind)
		}
	}

	units, ok := d.Node(unitsPath)
	if !ok {
		t.Fatal("LogicalUnits missing")
	}
	if len(units.Children()) != 0 {
		t.Errorf("sample LogicalUnit should be removed, found %d children", len(units.Children()))
	}
	if _, ok := d.Node(unitsPath + ".LogicalUnit"); ok {
		t.Error("sample item still indexed")
	}

	lu, _ := d.Template("LogicalUnit")
	entities, ok := lu.Child("Entities")
	if !ok || len(entities.Children()) != 0 {
		t.Error("template should not carry nested sample items")
	}

	for owner, slot := range map[string]string{"Relation": "RelationCond", "Property": "PropertyCond"} {
		tmpl, _ := d.Template(owner)
		if _, ok := tmpl.ChildByName(slot); ok {
			t.Errorf("%s template should not carry %s", owner, slot)
		}
	}
}

func TestLoadInitialValues(t *testing.T) {
	d := loadFixture(t)

	tests := []struct {
		path string
		want string
	}{
		{"Requirement.MDATA.DocName", "Draft requirement"},
		{"Requirement.MDATA.Version", "1.0"},
		{"Requirement.@lang", "ru"},
		{"Requirement.MDATA.DocDate", ""},
	}
	for _, tt := range tests {
		if got := text(t, d, tt.path); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
		}
	}

	mdata, _ := d.Node("Requirement.MDATA")
	if mdata.Kind != KindAll {
		t.Errorf("MDATA kind = %v, want all", mdata.Kind)
	}
}

func TestLoadEmptyModel(t *testing.T) {
	d := Load(schema.NewModel())
	if d.Root() != nil {
		t.Fatal("empty model should give a document without root")
	}
	if _, ok := d.AddChild("Requirement", "Entity", ""); ok {
		t.Error("AddChild on empty document should be a no-op")
	}
	if len(d.RebuildRules()) != 0 {
		t.Error("empty document has no rules")
	}
}

func TestAddChildKeysAreUnique(t *testing.T) {
	d := loadFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		key, ok := d.AddChild(unitsPath, "LogicalUnit", "")
		if !ok {
			t.Fatalf("add %d failed", i)
		}
		if !strings.HasPrefix(key, "LogicalUnit_") {
			t.Errorf("unexpected key %q", key)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}

	key, ok := d.AddChild(unitsPath, "LogicalUnit", "Main")
	if !ok || key != "Main" {
		t.Errorf("desired key not used: %q", key)
	}
	key, _ = d.AddChild(unitsPath, "LogicalUnit", "Main")
	if key == "Main" {
		t.Error("taken desired key must not be reused")
	}
}

func TestAddChildRejectsPathLikeKeys(t *testing.T) {
	tests := []struct {
		name    string
		desired string
	}{
		{"dotted", "a.b"},
		{"attribute marker", "@Mode"},
		{"empty", ""},
	}
	for _, tt := range tests {
		d := loadFixture(t)
		key, ok := d.AddChild(unitsPath, "LogicalUnit", tt.desired)
		if !ok {
			t.Fatalf("%s: add failed", tt.name)
		}
		if !strings.HasPrefix(key, "LogicalUnit_") {
			t.Errorf("%s: key = %q, want a generated key", tt.name, key)
		}
		if _, ok := d.Node(unitsPath + "." + key + "." + RuleHolderName); !ok {
			t.Errorf("%s: item not reachable under its key", tt.name)
		}
	}
}

func TestConditionSlotLifecycle(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		kind  string
		slot  string
	}{
		{"relation by name", "Relation", "RelationCond", "RelationCond"},
		{"relation generic", "Relation", "Condition", "RelationCond"},
		{"property by name", "Property", "PropertyCond", "PropertyCond"},
		{"property generic", "Property", "Condition", "PropertyCond"},
	}
	for _, tt := range tests {
		d := loadFixture(t)
		unit := mustAdd(t, d, unitsPath, "LogicalUnit")
		owner := mustAdd(t, d, unit+".Relations", "Relation")
		if tt.owner == "Property" {
			entity := mustAdd(t, d, unit+".Entities", "Entity")
			owner = mustAdd(t, d, entity+".Properties", "Property")
		}

		n, _ := d.Node(owner)
		if _, ok := n.ChildByName(tt.slot); ok {
			t.Fatalf("%s: fresh %s should start without %s", tt.name, tt.owner, tt.slot)
		}

		key, ok := d.AddChild(owner, tt.kind, "ignored")
		if !ok || key != tt.slot {
			t.Fatalf("%s: add = %q, %v", tt.name, key, ok)
		}
		kids := n.Children()
		if last := kids[len(kids)-1]; last.Name != tt.slot {
			t.Errorf("%s: slot should follow the declared fields, last child %s", tt.name, last.Name)
		}
		uid := text(t, d, owner+"."+tt.slot+".ConditionUid")
		if !strings.HasPrefix(uid, "Condition") {
			t.Errorf("%s: condition uid = %q", tt.name, uid)
		}
		if _, ok := d.AddChild(owner, tt.kind, ""); ok {
			t.Errorf("%s: second add should be a no-op", tt.name)
		}
		count := 0
		for _, c := range n.Children() {
			if c.Name == tt.slot {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%s: %d slots after re-add", tt.name, count)
		}

		if !d.RemoveChild(owner, tt.slot) {
			t.Fatalf("%s: remove failed", tt.name)
		}
		if _, ok := d.Node(owner + "." + tt.slot + ".ConditionUid"); ok {
			t.Errorf("%s: removed slot still indexed", tt.name)
		}
		if _, ok := d.AddChild(owner, tt.kind, ""); !ok {
			t.Errorf("%s: slot should come back after removal", tt.name)
		}
		if got := text(t, d, owner+"."+tt.slot+".ConditionUid"); got == "" || got == uid {
			t.Errorf("%s: restored slot uid = %q, old %q", tt.name, got, uid)
		}
	}
}

func TestAddChildStructuralRules(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	before := len(d.Paths())

	tests := []struct {
		name   string
		parent string
		kind   string
	}{
		{"undeclared field", rel, "PropertyCond"},
		{"present field", rel, "RelationUid"},
		{"unknown kind", rel, "Entity"},
		{"container with fields", "Requirement", "Entity"},
	}
	for _, tt := range tests {
		if _, ok := d.AddChild(tt.parent, tt.kind, ""); ok {
			t.Errorf("%s: expected no-op", tt.name)
		}
	}
	if len(d.Paths()) != before {
		t.Error("no-op changed the index")
	}
}

func TestAddChildNoops(t *testing.T) {
	d := loadFixture(t)
	before := len(d.Paths())

	tests := []struct {
		name   string
		parent string
		kind   string
	}{
		{"missing parent", "Requirement.Nowhere", "Entity"},
		{"leaf parent", "Requirement.MDATA.DocName", "KeyWord"},
		{"no template", "Requirement.MDATA.KeyWords", "Nothing"},
	}
	for _, tt := range tests {
		if _, ok := d.AddChild(tt.parent, tt.kind, ""); ok {
			t.Errorf("%s: expected no-op", tt.name)
		}
	}
	if len(d.Paths()) != before {
		t.Error("no-op changed the index")
	}
}

func TestAddChildTemplateFallbacks(t *testing.T) {
	d := loadFixture(t)

	// Container name resolves through its singular form.
	kw := mustAdd(t, d, "Requirement.MDATA.KeyWords", "KeyWords")
	if n, _ := d.Node(kw); n.Name != "KeyWord" {
		t.Errorf("singular fallback created %q", n.Name)
	}

	// Unknown kind in a non-empty container copies the first sibling.
	d.SetValue(kw, Text("safety"))
	key, ok := d.AddChild("Requirement.MDATA.KeyWords", "Tag", "")
	if !ok {
		t.Fatal("sibling fallback failed")
	}
	if got := text(t, d, "Requirement.MDATA.KeyWords."+key); got != "" {
		t.Errorf("sibling copy should be cleared, got %q", got)
	}
}

func TestAddChildFillsIdentifiers(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	entity := mustAdd(t, d, unit+".Entities", "Entity")
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	mustAdd(t, d, rel, "RelationCond")
	graph := mustAdd(t, d, "Requirement.VIEW.GraphView", "GraphElement")

	tests := []struct {
		path   string
		prefix string
	}{
		{entity + ".EntityUid", "Object"},
		{rel + ".RelationUid", "Relation"},
		{rel + ".RelationCond.ConditionUid", "Condition"},
		{graph + ".@ReqElementUId", "Graph"},
	}
	for _, tt := range tests {
		got := text(t, d, tt.path)
		if !strings.HasPrefix(got, tt.prefix) || got == tt.prefix {
			t.Errorf("%s = %q, want %s<n>", tt.path, got, tt.prefix)
		}
	}

	if got := text(t, d, graph+".@ReqElementType"); got != RichTypes["GraphElement"] {
		t.Errorf("ReqElementType = %q", got)
	}
	if _, ok := d.Node(unit + "." + RuleHolderName); !ok {
		t.Error("new logical unit should carry a rule holder")
	}
}

func TestSetValue(t *testing.T) {
	d := loadFixture(t)

	if !d.SetValue("Requirement.MDATA.DocName", Text("Brakes")) {
		t.Fatal("SetValue failed")
	}
	if got := text(t, d, "Requirement.MDATA.DocName"); got != "Brakes" {
		t.Errorf("DocName = %q", got)
	}

	if d.SetValue("Requirement.MDATA", Text("x")) {
		t.Error("text on a container should be rejected")
	}
	if d.SetValue("Requirement.MDATA.DocName", &Record{}) {
		t.Error("record on a leaf should be rejected")
	}
	if d.SetValue("Requirement.Missing", Text("x")) {
		t.Error("unknown path should be a no-op")
	}
}

func TestSetValueSpreadsRichRecord(t *testing.T) {
	d := loadFixture(t)
	graph := mustAdd(t, d, "Requirement.VIEW.GraphView", "GraphElement")

	ok := d.SetValue(graph, &Record{
		Attrs:  []Pair{{Name: RichTypeAttr, Value: "таблица"}},
		Fields: []Field{{Name: "ReqElementData", Text: "<svg/>"}, {Name: "Bogus", Text: "x"}},
	})
	if !ok {
		t.Fatal("SetValue failed")
	}
	if got := text(t, d, graph+".ReqElementData"); got != "<svg/>" {
		t.Errorf("ReqElementData = %q", got)
	}
	if got := text(t, d, graph+".@"+RichTypeAttr); got != "таблица" {
		t.Errorf("ReqElementType = %q", got)
	}
}

func TestSetValueRecordTargets(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	entity := mustAdd(t, d, unit+".Entities", "Entity")
	rec := &Record{Fields: []Field{{Name: "KSICode", Text: "K-1"}}}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"structured identification", entity + ".EntityID", true},
		{"logical unit", unit, false},
		{"entity", entity, false},
		{"plain list", unit + ".Entities", false},
		{"metadata block", "Requirement.MDATA", false},
	}
	for _, tt := range tests {
		if got := d.SetValue(tt.path, rec); got != tt.want {
			t.Errorf("%s: SetValue = %v, want %v", tt.name, got, tt.want)
		}
	}
	if n, _ := d.Node(unit); n.Record() != nil {
		t.Error("rejected record was stored")
	}
	if _, ok := d.Node(entity + ".EntityName"); !ok {
		t.Error("entity children lost")
	}
}

func TestChoices(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	rel := mustAdd(t, d, unit+".Relations", "Relation")

	tests := []struct {
		name string
		path string
		want int
	}{
		{"enumerated attribute", rel + ".@TypeOfRelation", 2},
		{"free text", rel + ".RelationSource", 0},
		{"container", rel, 0},
		{"missing", rel + ".Nope", 0},
	}
	for _, tt := range tests {
		if got := d.Choices(tt.path); len(got) != tt.want {
			t.Errorf("%s: Choices = %v, want %d literals", tt.name, got, tt.want)
		}
	}
	if !d.SetValue(rel+".@TypeOfRelation", Text("unlisted")) {
		t.Error("choices are advisory, any text should be accepted")
	}
}

func TestIndexMissFallsBackToWalk(t *testing.T) {
	d := loadFixture(t)
	path := "Requirement.MDATA.DocName"
	delete(d.index, path)

	if !d.SetValue(path, Text("recovered")) {
		t.Fatal("walk fallback should resolve the path")
	}
	if _, ok := d.index[path]; !ok {
		t.Error("resolved path should be written back to the index")
	}
}

func TestRoleRuleConsistency(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]

	for _, uid := range []string{"a", "b", "c"} {
		rel := mustAdd(t, d, unit+".Relations", "Relation")
		d.SetValue(rel+".RelationUid", Text(uid))
	}

	d.RecordRole(unitID, "a", rules.Premise)
	d.RecordRole(unitID, "b", rules.Premise)
	d.RecordRole(unitID, "c", rules.Consequence)

	if got, _ := d.DeriveRuleText(unitID); got != "IF (a) AND (b) THEN (c)" {
		t.Errorf("rule = %q", got)
	}
	recs := d.RebuildRules()
	if len(recs) != 1 || recs[0].ID != 1 || recs[0].Unit != unitID || recs[0].Manual {
		t.Errorf("unexpected records %+v", recs)
	}
	if got := text(t, d, "Requirement.PLOGIC.PRules.PRule_1.PRuleText"); got != "IF (a) AND (b) THEN (c)" {
		t.Errorf("PRule text = %q", got)
	}

	d.ClearRole(unitID, "c")
	if got, _ := d.DeriveRuleText(unitID); got != "(a) AND (b)" {
		t.Errorf("rule after clear = %q", got)
	}

	d.ClearRole(unitID, "a")
	d.ClearRole(unitID, "b")
	if _, ok := d.DeriveRuleText(unitID); ok {
		t.Error("no tags should derive no rule")
	}
	if recs := d.RebuildRules(); len(recs) != 0 {
		t.Errorf("rule record should be gone, got %+v", recs)
	}
	prules, _ := d.Node("Requirement.PLOGIC.PRules")
	if len(prules.Children()) != 0 {
		t.Error("PRules should be emptied")
	}
}

func TestRecordRoleValidation(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	uid := text(t, d, rel+".RelationUid")

	if err := d.RecordRole(unitID, uid, rules.Role("maybe")); !errors.Is(err, rules.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if err := d.RecordRole(unitID, "Relation-unknown", rules.Premise); err != nil {
		t.Errorf("unknown uid should be ignored, got %v", err)
	}
	if err := d.RecordRole("LogicalUnit_missing", uid, rules.Premise); err != nil {
		t.Errorf("unknown unit should be ignored, got %v", err)
	}
	if len(d.RoleUnits()) != 0 {
		t.Errorf("nothing should be tagged, got %v", d.RoleUnits())
	}

	mustAdd(t, d, rel, "RelationCond")
	condUID := text(t, d, rel+".RelationCond.ConditionUid")
	if err := d.RecordRole(unitID, condUID, rules.Consequence); err != nil {
		t.Fatal(err)
	}
	if len(d.Roles(unitID)) != 1 {
		t.Error("condition uid should be taggable")
	}
}

func TestRoleFollowsRenamedUID(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	uid := text(t, d, rel+".RelationUid")

	d.RecordRole(unitID, uid, rules.Premise)
	d.SetValue(rel+".RelationUid", Text("R-main"))

	entries := d.Roles(unitID)
	if len(entries) != 1 || entries[0].UID != "R-main" {
		t.Errorf("role should follow the rename, got %+v", entries)
	}
	if got := text(t, d, unit+"."+RuleHolderName); got != "(R-main)" {
		t.Errorf("rule holder = %q", got)
	}
}

func TestRemoveChildCascadesRoles(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	uid := text(t, d, rel+".RelationUid")
	d.RecordRole(unitID, uid, rules.Premise)

	relKey := rel[strings.LastIndex(rel, ".")+1:]
	if !d.RemoveChild(unit+".Relations", relKey) {
		t.Fatal("RemoveChild failed")
	}
	if len(d.Roles(unitID)) != 0 {
		t.Error("role entry should be removed with its relation")
	}
	for _, u := range d.RoleUnits() {
		if u == unitID {
			t.Error("emptied unit should leave the role map")
		}
	}
	if _, ok := d.Node(rel + ".RelationUid"); ok {
		t.Error("removed subtree should be unindexed")
	}
	if got := text(t, d, unit+"."+RuleHolderName); got != "" {
		t.Errorf("rule holder should be cleared, got %q", got)
	}
}

func TestRemoveEntityDropsPropertyConditionRole(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	entity := mustAdd(t, d, unit+".Entities", "Entity")
	prop := mustAdd(t, d, entity+".Properties", "Property")
	mustAdd(t, d, prop, "PropertyCond")
	rel := mustAdd(t, d, unit+".Relations", "Relation")

	cond := text(t, d, prop+".PropertyCond.ConditionUid")
	relUID := text(t, d, rel+".RelationUid")
	d.RecordRole(unitID, cond, rules.Premise)
	d.RecordRole(unitID, relUID, rules.Consequence)
	if got, _ := d.DeriveRuleText(unitID); got != "IF ("+cond+") THEN ("+relUID+")" {
		t.Fatalf("rule = %q", got)
	}

	if !d.RemoveChild(unit+".Entities", entity[strings.LastIndex(entity, ".")+1:]) {
		t.Fatal("RemoveChild failed")
	}
	if _, ok := d.Role(unitID, cond); ok {
		t.Error("condition role should go with its entity")
	}
	if role, ok := d.Role(unitID, relUID); !ok || role != rules.Consequence {
		t.Errorf("relation role = %v, %v", role, ok)
	}
	if got := text(t, d, unit+"."+RuleHolderName); got != "" {
		t.Errorf("a consequence alone should leave no rule, got %q", got)
	}
}

func TestRemoveChildGuards(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	entity := mustAdd(t, d, unit+".Entities", "Entity")

	tests := []struct {
		name   string
		parent string
		key    string
	}{
		{"protected identification", entity, "EntityID"},
		{"not removable", entity, "EntityName"},
		{"missing key", entity, "Nope"},
		{"missing parent", "Requirement.Nowhere", "X"},
	}
	for _, tt := range tests {
		if d.RemoveChild(tt.parent, tt.key) {
			t.Errorf("%s: expected no-op", tt.name)
		}
	}

	rel := mustAdd(t, d, unit+".Relations", "Relation")
	mustAdd(t, d, rel, "RelationCond")
	if !d.RemoveChild(rel, "RelationCond") {
		t.Error("condition slot should be removable")
	}
}

func TestRemoveLogicalUnitDropsRoles(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	d.RecordRole(unitID, text(t, d, rel+".RelationUid"), rules.Premise)
	d.SetValue(unit+"."+RuleHolderName, Text("custom"))

	d.RemoveChild(unitsPath, unitID)
	if len(d.RoleUnits()) != 0 || d.IsManual(unitID) {
		t.Error("unit state should be dropped with the unit")
	}
}

func TestManualRuleText(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	holder := unit + "." + RuleHolderName

	d.SetValue(holder, Text("IF (x) THEN (y)"))
	if !d.IsManual(unitID) {
		t.Fatal("typed rule should switch the unit to manual")
	}
	recs := d.RebuildRules()
	if len(recs) != 1 || !recs[0].Manual || recs[0].Text != "IF (x) THEN (y)" {
		t.Errorf("unexpected records %+v", recs)
	}
	if got := text(t, d, holder+".@"+RuleModeAttr); got != ModeManual {
		t.Errorf("mode = %q", got)
	}

	d.SetValue(holder, Text(""))
	if d.IsManual(unitID) {
		t.Error("clearing the text should return to automatic")
	}
	if recs := d.RebuildRules(); len(recs) != 0 {
		t.Errorf("no tags and no text should give no records, got %+v", recs)
	}
}

func TestPRuleNotesSurviveRebuild(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	d.RecordRole(unitID, text(t, d, rel+".RelationUid"), rules.Premise)

	d.RebuildRules()
	d.SetValue("Requirement.PLOGIC.PRules.PRule_1.PRuleNotes", Text("checked"))
	d.RebuildRules()

	if got := text(t, d, "Requirement.PLOGIC.PRules.PRule_1.PRuleNotes"); got != "checked" {
		t.Errorf("notes = %q", got)
	}
	if got := text(t, d, "Requirement.PLOGIC.PRules.PRule_1.PRuleUnit"); got != unitID {
		t.Errorf("unit = %q", got)
	}
}

func TestCopyLogicalUnitRemapsReferences(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	entity := mustAdd(t, d, unit+".Entities", "Entity")
	rel := mustAdd(t, d, unit+".Relations", "Relation")

	e1 := text(t, d, entity+".EntityUid")
	r1 := text(t, d, rel+".RelationUid")
	d.SetValue(rel+".RelationSource", Text(e1))
	d.RecordRole(unitID, r1, rules.Premise)

	copyID, ok := d.CopyChild(unitsPath, unitID)
	if !ok {
		t.Fatal("CopyChild failed")
	}
	cp := unitsPath + "." + copyID
	entityRel := entity[len(unit):]
	relRel := rel[len(unit):]

	e2 := text(t, d, cp+entityRel+".EntityUid")
	if e2 == "" || e2 == e1 {
		t.Errorf("copied entity uid = %q, source %q", e2, e1)
	}
	if got := text(t, d, cp+relRel+".RelationSource"); got != e2 {
		t.Errorf("relation endpoint = %q, want %q", got, e2)
	}
	if got := text(t, d, rel+".RelationSource"); got != e1 {
		t.Errorf("source unit changed: %q", got)
	}

	r2 := text(t, d, cp+relRel+".RelationUid")
	entries := d.Roles(copyID)
	if len(entries) != 1 || entries[0].UID != r2 || r2 == r1 {
		t.Errorf("copied roles = %+v (r1 %q, r2 %q)", entries, r1, r2)
	}
	if len(d.RebuildRules()) != 2 {
		t.Error("both units should produce a rule")
	}
}

func TestCopyChildNoops(t *testing.T) {
	d := loadFixture(t)
	if _, ok := d.CopyChild(unitsPath, "Missing"); ok {
		t.Error("missing source should be a no-op")
	}
	if _, ok := d.CopyChild("Requirement.Nowhere", "X"); ok {
		t.Error("missing parent should be a no-op")
	}
}

func TestSelectChoice(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	mustAdd(t, d, rel, "Condition")
	choice := rel + ".RelationCond.ConditionExpr"

	n, _ := d.Node(choice)
	if n.Kind != KindChoice || n.Selected != "" {
		t.Fatalf("choice should start unselected, kind %v selected %q", n.Kind, n.Selected)
	}
	if !d.Select(choice, "Equality") || !d.Select(choice, "Equality") {
		t.Error("select should succeed and be idempotent")
	}
	if d.Select(choice, "") || d.Select(choice, "Bogus") {
		t.Error("select must not clear or pick an unknown branch")
	}
	if n.Selected != "Equality" {
		t.Errorf("selected = %q", n.Selected)
	}
	if d.Select(rel, "RelationUid") {
		t.Error("select on a non-choice node should fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := loadFixture(t)
	unit := mustAdd(t, d, unitsPath, "LogicalUnit")
	unitID := unit[len(unitsPath)+1:]
	rel := mustAdd(t, d, unit+".Relations", "Relation")
	uid := text(t, d, rel+".RelationUid")

	c := d.Clone()
	c.SetValue("Requirement.MDATA.DocName", Text("changed"))
	c.RecordRole(unitID, uid, rules.Premise)
	c.RemoveChild(unit+".Relations", rel[strings.LastIndex(rel, ".")+1:])

	if got := text(t, d, "Requirement.MDATA.DocName"); got != "Draft requirement" {
		t.Errorf("original changed: %q", got)
	}
	if len(d.Roles(unitID)) != 0 {
		t.Error("role recorded on the clone leaked")
	}
	if _, ok := d.Node(rel); !ok {
		t.Error("removal on the clone leaked")
	}
}

func TestFormatTree(t *testing.T) {
	d := loadFixture(t)
	mustAdd(t, d, unitsPath, "LogicalUnit")
	out := FormatTree(d.Root())

	for _, want := range []string{"Requirement @lang=\"ru\"", "├── MDATA", "└── ", "(excluded)", "DocName = \"Draft requirement\""} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Entities", "Entity"},
		{"Properties", "Property"},
		{"Relations", "Relation"},
		{"ObjectsOfReq", "ObjectOfReq"},
		{"ObjectsOfStandartization", "ObjectOfStandartization"},
		{"KeyWord", "KeyWord"},
	}
	for _, tt := range tests {
		if got := singular(tt.in); got != tt.want {
			t.Errorf("singular(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUIDPrefix(t *testing.T) {
	tests := []struct {
		pattern, owner, field, want string
	}{
		{"Object([0-9])+", "Entity", "EntityUid", "Object"},
		{"Condition([0-9]+)", "", "ConditionUid", "Condition"},
		{"", "TableElement", "ReqElementUId", "Table"},
		{"", "Developer", "DeveloperUid", "Developer"},
		{"", "", "SomeUid", "SomeUid"},
		{"", "", "", "Uid"},
	}
	for _, tt := range tests {
		if got := uidPrefix(tt.pattern, tt.owner, tt.field); got != tt.want {
			t.Errorf("uidPrefix(%q, %q, %q) = %q, want %q", tt.pattern, tt.owner, tt.field, got, tt.want)
		}
	}
}
