package nlggen

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func renderFake(t *testing.T, card *CardinalityTable) string {
	t.Helper()
	plan, _ := fakePlan(t, card)
	var buf bytes.Buffer
	cfg := DefaultRenderConfig()
	cfg.Source = "/tmp/ontology/test.ttl"
	if err := Render(&buf, plan, cfg); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderHeader(t *testing.T) {
	out := renderFake(t, nil)

	wantHeader := "# CASE NLG VERIFIER v0.1.0\n# Code generated by nlggen from test.ttl. DO NOT EDIT.\n"
	if !strings.HasPrefix(out, wantHeader) {
		t.Errorf("header mismatch:\n%s", out[:min(len(out), 200)])
	}
	for _, want := range []string{
		"import case\n",
		"class Missing(object):",
		"MISSING = Missing()",
		"def _present(properties):",
		"#=====================================================\n#-- CORE SUB SUB\n",
		"#-- PROP\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderDuckFunction(t *testing.T) {
	out := renderFake(t, nil)

	want := `def duck_Action(case_doc, actionStatus=MISSING, environment=MISSING):
    """
    :param actionStatus: Any number of type string.
    :param environment: Any number of type UcoObject.
    :return: A DuckCategory object.
    """
    if not isinstance(actionStatus, Missing):
        assert isinstance(actionStatus, str),\
            "[duck_Action] actionStatus must be of type string."
    if not isinstance(environment, Missing):
        assert isinstance(environment, case.CoreCategory),\
            "[duck_Action] environment must be of type UcoObject."
    return case_doc.create_duck_category("Action", **_present({"actionStatus": actionStatus, "environment": environment}))
`
	if !strings.Contains(out, want) {
		t.Errorf("duck_Action not rendered as expected\n%s", out)
	}
	if strings.Contains(out, "[duck_Action] actionStatus is required.") {
		t.Error("optional property rendered as required")
	}
}

func TestRenderRequiredProperty(t *testing.T) {
	card := NewCardinalityTable()
	card.Set("Account", "accountIdentifier", Constraint{Field: FieldQualified, Value: "1", Datatype: "nonNegativeInteger"})
	out := renderFake(t, card)

	want := `def prop_Account(core_object, accountIdentifier=MISSING):
    """
    :param accountIdentifier: Exactly 1 of type string.
    :return: A PropertyBundle object.
    """
    assert not isinstance(accountIdentifier, Missing),\
        "[prop_Account] accountIdentifier is required."
    assert isinstance(accountIdentifier, str),\
        "[prop_Account] accountIdentifier must be of type string."
    return core_object.create_property_bundle("Account", **_present({"accountIdentifier": accountIdentifier}))
`
	if !strings.Contains(out, want) {
		t.Errorf("prop_Account not rendered as expected\n%s", out)
	}
}

func TestRenderSubFunction(t *testing.T) {
	out := renderFake(t, nil)

	want := `def core_sub_sub_Attorney(case_doc, parent_object):
    """
    :return: A SubCategory object.
    """
    assert isinstance(parent_object, case.CoreCategory) and parent_object.type == "BenevolentRole",\
        "[core_sub_sub_Attorney] parent_object must be of type BenevolentRole."
    return parent_object.create_sub_category("Attorney")
`
	if !strings.Contains(out, want) {
		t.Errorf("core_sub_sub_Attorney not rendered as expected\n%s", out)
	}
}

func TestRenderListAndNoCheck(t *testing.T) {
	h := &Hierarchy{
		Types: []*OntologyType{{Name: "Thing", Parent: RootParent, Properties: []string{"tags", "value"}}},
		Properties: map[string]*PropertyDecl{
			"tags":  {Name: "tags", Ranges: []string{"string"}},
			"value": {Name: "value", Ranges: []string{"integer", "string"}},
		},
	}
	card := NewCardinalityTable()
	card.Set("Thing", "tags", Constraint{Field: FieldMinQualified, Value: "1"})
	plan := BuildPlan(ResolveNames(h, DefaultRoots(), nil), card, DefaultPlanConfig(), nil)

	var buf bytes.Buffer
	if err := Render(&buf, plan, DefaultRenderConfig()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# CASE NLG VERIFIER v0.1.0\n# Code generated by nlggen from ontology. DO NOT EDIT.\n",
		"    :param tags: At least 1 of type string.\n",
		"    :param value: One of types integer, string. Not checked (multiple range types).\n",
		"    assert not isinstance(tags, Missing),\\\n        \"[duck_Thing] tags is required.\"\n",
		"    assert isinstance(tags, list),\\\n        \"[duck_Thing] tags must be of type List of string.\"\n",
		"    assert all(isinstance(i, str) for i in tags),\\\n",
		"    # NOCHECK:value\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := renderFake(t, nil)
	b := renderFake(t, nil)
	if a != b {
		t.Error("rendering the same plan twice produced different output")
	}
}

func TestRenderError(t *testing.T) {
	plan, _ := fakePlan(t, nil)
	err := Render(failingWriter{}, plan, DefaultRenderConfig())
	var re *RenderError
	if !errors.As(err, &re) || re.Target != "python" {
		t.Fatalf("err = %v, want python RenderError", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPyString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"line\nbreak", `"line\nbreak"`},
		{"\x01", `"\x01"`},
	}
	for _, tt := range tests {
		if got := pyString(tt.in); got != tt.want {
			t.Errorf("pyString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
