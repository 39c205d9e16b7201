package nlggen

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func fakePlan(t *testing.T, card *CardinalityTable) (*Plan, *Diagnostics) {
	t.Helper()
	h, diags := resolvedFake(t)
	if card == nil {
		card = NewCardinalityTable()
	}
	return BuildPlan(h, card, DefaultPlanConfig(), diags), diags
}

func TestRequirement(t *testing.T) {
	tests := []struct {
		name     string
		c        Constraint
		required bool
		list     bool
		wantErr  bool
	}{
		{"min", Constraint{Field: FieldMinQualified, Value: "1"}, true, true, false},
		{"exactly one", Constraint{Field: FieldQualified, Value: "1"}, true, false, false},
		{"exactly two", Constraint{Field: FieldQualified, Value: "2"}, true, true, false},
		{"exactly zero", Constraint{Field: FieldQualified, Value: "0"}, false, false, true},
		{"exactly garbage", Constraint{Field: FieldQualified, Value: "n"}, false, false, true},
		{"max", Constraint{Field: FieldMaxQualified, Value: "1"}, false, true, false},
		{"recorded default", Constraint{Field: FieldNoCardinality, Value: ValueAny, Recorded: true}, false, true, false},
		{"never seen", Unconstrained, false, false, false},
		{"other field", Constraint{Field: "cardinality", Value: "1"}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, list, err := Requirement(tt.c)
			if tt.wantErr {
				var uc *UnsupportedCardinalityError
				if !errors.As(err, &uc) {
					t.Fatalf("err = %v, want UnsupportedCardinalityError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Requirement: %v", err)
			}
			if required != tt.required || list != tt.list {
				t.Errorf("got required=%v list=%v, want %v %v", required, list, tt.required, tt.list)
			}
		})
	}
}

func TestCardinalityPhrase(t *testing.T) {
	tests := []struct {
		c    Constraint
		want string
	}{
		{Constraint{Field: FieldMinQualified, Value: "1"}, "At least 1 of type string."},
		{Constraint{Field: FieldQualified, Value: "1"}, "Exactly 1 of type string."},
		{Constraint{Field: FieldMaxQualified, Value: "2"}, "At most 2 of type string."},
		{Unconstrained, "Any number of type string."},
	}
	for _, tt := range tests {
		if got := CardinalityPhrase(tt.c, "string"); got != tt.want {
			t.Errorf("CardinalityPhrase(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	plan, _ := fakePlan(t, nil)

	var names []string
	for _, fn := range plan.Functions() {
		names = append(names, fn.Name)
	}
	want := []string{
		"core_Role",
		"core_sub_BenevolentRole",
		"core_sub_sub_Attorney",
		"duck_Action",
		"duck_UcoObject",
		"prop_Account",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("functions = %v, want %v", names, want)
	}

	attorney, _ := plan.Function("core_sub_sub_Attorney")
	if attorney.Bucket != BucketSub || attorney.Parent != "BenevolentRole" || attorney.ParentWrapper != "CoreCategory" {
		t.Errorf("Attorney = %+v", attorney)
	}
	if attorney.Receiver != "parent_object" || attorney.Factory != "create_sub_category" {
		t.Errorf("Attorney factory = %s.%s", attorney.Receiver, attorney.Factory)
	}

	action, _ := plan.Function("duck_Action")
	if len(action.Params) != 2 {
		t.Fatalf("Action params = %+v", action.Params)
	}
	status, env := action.Params[0], action.Params[1]
	if status.Check != CheckNative || status.NativeType != "str" || status.Required || status.List {
		t.Errorf("actionStatus = %+v", status)
	}
	if env.Check != CheckCase || env.Wrapper != "CoreCategory" {
		t.Errorf("environment = %+v", env)
	}

	account, _ := plan.Function("prop_Account")
	if account.Receiver != "core_object" || account.Factory != "create_property_bundle" || account.Returns != "PropertyBundle" {
		t.Errorf("Account = %+v", account)
	}

	if _, ok := plan.Function("nope"); ok {
		t.Error("Function found a name that is not planned")
	}
}

func TestBuildPlan_Cardinality(t *testing.T) {
	card := NewCardinalityTable()
	card.Set("Account", "accountIdentifier", Constraint{Field: FieldQualified, Value: "1", Datatype: "nonNegativeInteger"})
	card.Set("Role", "name", Constraint{Field: FieldQualified, Value: "0", Datatype: "nonNegativeInteger"})
	plan, diags := fakePlan(t, card)

	account, _ := plan.Function("prop_Account")
	id := account.Params[0]
	if !id.Required || id.List || id.Phrase != "Exactly 1 of type string." {
		t.Errorf("accountIdentifier = %+v", id)
	}

	role, _ := plan.Function("core_Role")
	name := role.Params[0]
	if name.Check != CheckNone || name.Unchecked != "unsupported cardinality" {
		t.Errorf("name = %+v", name)
	}
	got := diags.Of(DiagCardinality)
	if len(got) != 1 || got[0].Subject != "core_Role.name" {
		t.Errorf("cardinality diagnostics = %v", got)
	}
}

func TestBuildPlan_NLGCheck(t *testing.T) {
	h := &Hierarchy{
		Types: []*OntologyType{
			{Name: "Tool", Parent: "UcoObject", Properties: []string{"usedBy"}},
			{Name: "Identity", Parent: "UcoObject", Index: 1},
			{Name: "Hash", Parent: "PropertyBundle", Index: 2, Properties: []string{"hashes"}},
		},
		Properties: map[string]*PropertyDecl{
			"usedBy": {Name: "usedBy", Ranges: []string{"Identity"}},
			"hashes": {Name: "hashes", Ranges: []string{"Hash"}},
		},
	}
	card := NewCardinalityTable()
	card.Set("Hash", "hashes", Constraint{Field: FieldMaxQualified, Value: "3"})
	named := ResolveNames(h, DefaultRoots(), nil)
	plan := BuildPlan(named, card, DefaultPlanConfig(), nil)

	tool, _ := plan.Function("core_Tool")
	if p := tool.Params[0]; p.Check != CheckNLG || p.Wrapper != "CoreCategory" || p.RangeType != "Identity" {
		t.Errorf("usedBy = %+v", p)
	}
	hash, _ := plan.Function("prop_Hash")
	if p := hash.Params[0]; p.Check != CheckNLG || p.Wrapper != "PropertyBundle" || !p.List {
		t.Errorf("hashes = %+v", p)
	}
}

func TestBuildPlan_MultiRangeUnchecked(t *testing.T) {
	h := &Hierarchy{
		Types: []*OntologyType{{Name: "Thing", Parent: RootParent, Properties: []string{"value"}}},
		Properties: map[string]*PropertyDecl{
			"value": {Name: "value", Ranges: []string{"integer", "string"}},
		},
	}
	plan := BuildPlan(ResolveNames(h, DefaultRoots(), nil), nil, DefaultPlanConfig(), nil)
	fn, _ := plan.Function("duck_Thing")
	p := fn.Params[0]
	if p.Check != CheckNone || p.Phrase != "One of types integer, string." {
		t.Errorf("value = %+v", p)
	}
	if len(plan.Manifest) != 0 {
		t.Errorf("unchecked parameter in manifest: %v", plan.Manifest)
	}
}

func TestBuildPlan_ReservedPropertyRenamed(t *testing.T) {
	h := &Hierarchy{
		Types: []*OntologyType{{Name: "Thing", Parent: RootParent, Properties: []string{"class", "value"}}},
		Properties: map[string]*PropertyDecl{
			"class": {Name: "class", Ranges: []string{"string"}},
			"value": {Name: "value", Ranges: []string{"string"}},
		},
	}
	diags := NewDiagnostics()
	plan := BuildPlan(ResolveNames(h, DefaultRoots(), nil), nil, DefaultPlanConfig(), diags)
	fn, _ := plan.Function("duck_Thing")
	if fn.Params[0].Name != "class_" || fn.Params[0].Property != "class" {
		t.Errorf("class param = %+v", fn.Params[0])
	}

	renamed := diags.Of(DiagRenamed)
	if len(renamed) != 1 {
		t.Fatalf("renamed diagnostics = %v", renamed)
	}
	want := Diagnostic{
		Kind:    DiagRenamed,
		Subject: "duck_Thing.class",
		Detail:  `invalid identifier "class": reserved word, emitted as class_`,
	}
	if renamed[0] != want {
		t.Errorf("diagnostic = %+v, want %+v", renamed[0], want)
	}
}

func TestBuildPlan_NativeTypeOverride(t *testing.T) {
	h := &Hierarchy{
		Types: []*OntologyType{{Name: "Event", Parent: RootParent, Properties: []string{"at", "note"}}},
		Properties: map[string]*PropertyDecl{
			"at":   {Name: "at", Ranges: []string{"dateTime"}},
			"note": {Name: "note", Ranges: []string{"Markdown"}},
		},
	}
	cfg := DefaultPlanConfig()
	plan := BuildPlan(ResolveNames(h, DefaultRoots(), nil), nil, cfg, nil)
	fn, _ := plan.Function("duck_Event")
	if fn.Params[0].NativeType != "datetime.datetime" {
		t.Errorf("at native type = %q", fn.Params[0].NativeType)
	}
	if fn.Params[1].NativeType != "Markdown" {
		t.Errorf("note native type = %q", fn.Params[1].NativeType)
	}

	cfg.NativeTypes = map[string]string{"Markdown": "str"}
	plan = BuildPlan(ResolveNames(h, DefaultRoots(), nil), nil, cfg, nil)
	fn, _ = plan.Function("duck_Event")
	if fn.Params[1].NativeType != "str" {
		t.Errorf("overridden note native type = %q", fn.Params[1].NativeType)
	}
}

func TestBuildPlan_UnknownCategorySkipped(t *testing.T) {
	h := &Hierarchy{Types: []*OntologyType{{Name: "Odd", Category: "weird_"}}}
	diags := NewDiagnostics()
	plan := BuildPlan(h, nil, DefaultPlanConfig(), diags)
	if len(plan.Groups) != 0 {
		t.Errorf("groups = %+v", plan.Groups)
	}
	if len(diags.Of(DiagCategory)) != 1 {
		t.Errorf("category diagnostics = %v", diags.Of(DiagCategory))
	}
}

func TestWriteManifest(t *testing.T) {
	card := NewCardinalityTable()
	card.Set("Account", "accountIdentifier", Constraint{Field: FieldQualified, Value: "1"})
	plan, _ := fakePlan(t, card)

	var buf bytes.Buffer
	if err := WriteManifest(&buf, plan.Manifest); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	want := "core_Role\n" +
		"    OPTIONAL  NATIVE  SINGLE  name\n" +
		"\n" +
		"duck_Action\n" +
		"    OPTIONAL  NATIVE  SINGLE  actionStatus\n" +
		"    OPTIONAL  CASE    SINGLE  environment\n" +
		"\n" +
		"prop_Account\n" +
		"    REQUIRED  NATIVE  SINGLE  accountIdentifier\n"
	if buf.String() != want {
		t.Errorf("manifest =\n%s\nwant\n%s", buf.String(), want)
	}
}
