package nlggen

import (
	"reflect"
	"testing"
)

const (
	coreNS = "http://unifiedcyberontology.org/core#"
	xsdNS  = "http://www.w3.org/2001/XMLSchema#"
)

// fakeSource serves a fixed ontology view keyed by full IRIs.
type fakeSource struct {
	classTree    string
	propertyTree string
	classes      []string
	properties   []string
	domains      map[string][]string
	ranges       map[string][]string
	supers       map[string][]string
}

func (f *fakeSource) ClassTree() string { return f.classTree }
func (f *fakeSource) PropertyTree() string { return f.propertyTree }
func (f *fakeSource) Classes() []string { return f.classes }
func (f *fakeSource) Properties() []string { return f.properties }
func (f *fakeSource) DomainOf(typeIRI string) []string { return f.domains[typeIRI] }
func (f *fakeSource) RangesOf(propIRI string) []string { return f.ranges[propIRI] }
func (f *fakeSource) DirectSuperclasses(typeIRI string) []string { return f.supers[typeIRI] }
func (f *fakeSource) QName(iri string) string { return iri }

func core(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = coreNS + n
	}
	return out
}

// newFakeSource returns the Action / Role / Account ontology used across
// the plan and render tests.
func newFakeSource() *fakeSource {
	return &fakeSource{
		classTree: "core:Account\n" +
			"core:Action\n" +
			"core:UcoObject\n" +
			"----core:Role\n" +
			"--------core:BenevolentRole\n" +
			"------------core:Attorney\n",
		propertyTree: "core:accountIdentifier\n" +
			"core:actionStatus\n" +
			"core:environment\n" +
			"core:name\n" +
			"----core:givenName\n",
		classes:    core("Account", "Action", "Attorney", "BenevolentRole", "Role", "UcoObject"),
		properties: core("accountIdentifier", "actionStatus", "environment", "givenName", "name"),
		domains: map[string][]string{
			coreNS + "Account": core("accountIdentifier"),
			coreNS + "Action":  core("environment", "actionStatus"),
			coreNS + "Role":    core("name", "givenName"),
		},
		ranges: map[string][]string{
			coreNS + "accountIdentifier": {xsdNS + "string"},
			coreNS + "actionStatus":      {xsdNS + "string"},
			coreNS + "environment":       core("UcoObject"),
			coreNS + "name":              {xsdNS + "string"},
		},
		supers: map[string][]string{
			coreNS + "Account":        core("PropertyBundle"),
			coreNS + "Role":           core("UcoObject"),
			coreNS + "BenevolentRole": core("Role"),
			coreNS + "Attorney":       core("BenevolentRole"),
		},
	}
}

func TestBuildHierarchy(t *testing.T) {
	diags := NewDiagnostics()
	h := BuildHierarchy(newFakeSource(), DefaultRoots(), diags)

	want := []OntologyType{
		{Name: "Account", Level: 0, Parent: "PropertyBundle", Index: 0, Properties: []string{"accountIdentifier"}},
		{Name: "Action", Level: 0, Parent: RootParent, Index: 1, Properties: []string{"actionStatus", "environment"}},
		{Name: "UcoObject", Level: 0, Parent: RootParent, Index: 2},
		{Name: "Role", Level: 1, Parent: "UcoObject", Index: 3, Properties: []string{"name"}},
		{Name: "BenevolentRole", Level: 2, Parent: "Role", Index: 4},
		{Name: "Attorney", Level: 3, Parent: "BenevolentRole", Index: 5},
	}
	if len(h.Types) != len(want) {
		t.Fatalf("got %d types, want %d", len(h.Types), len(want))
	}
	for i, w := range want {
		if !reflect.DeepEqual(*h.Types[i], w) {
			t.Errorf("type %d = %+v, want %+v", i, *h.Types[i], w)
		}
	}

	name := h.Properties["name"]
	if name == nil || !reflect.DeepEqual(name.Ranges, []string{"string"}) {
		t.Fatalf("name = %+v", name)
	}
	given := h.Properties["givenName"]
	if given == nil || given.Parent != "name" || given.Level != 1 {
		t.Errorf("givenName = %+v, want parent name level 1", given)
	}
	if len(given.Ranges) != 0 {
		t.Errorf("givenName ranges = %v", given.Ranges)
	}

	gaps := make(map[string]bool)
	for _, d := range diags.Of(DiagGap) {
		gaps[d.Subject] = true
	}
	for _, subject := range []string{"givenName", "UcoObject", "BenevolentRole", "Attorney"} {
		if !gaps[subject] {
			t.Errorf("missing gap diagnostic for %s (have %v)", subject, diags.Of(DiagGap))
		}
	}
}

func TestBuildHierarchy_MultipleSuperclasses(t *testing.T) {
	src := &fakeSource{
		classTree: "core:Hybrid\n",
		classes:   core("Hybrid"),
		supers:    map[string][]string{coreNS + "Hybrid": core("Zeta", "Alpha")},
	}
	diags := NewDiagnostics()
	h := BuildHierarchy(src, DefaultRoots(), diags)
	if h.Types[0].Parent != "Alpha" {
		t.Errorf("parent = %q, want Alpha", h.Types[0].Parent)
	}
	if len(diags.Of(DiagMultiParent)) != 1 {
		t.Errorf("multi-parent diagnostics = %v", diags.Of(DiagMultiParent))
	}
}

func TestBuildHierarchy_ResolvableSuperclassPreferred(t *testing.T) {
	extNS := "http://example.org/ext#"
	src := &fakeSource{
		classTree: "core:Device\n" +
			"core:UcoObject\n" +
			"core:Widget\n",
		classes: core("Device", "UcoObject", "Widget"),
		supers: map[string][]string{
			coreNS + "Device": {extNS + "Artifact", coreNS + "UcoObject"},
			coreNS + "Widget": {extNS + "Artifact", coreNS + "PropertyBundle"},
		},
	}
	diags := NewDiagnostics()
	h := BuildHierarchy(src, DefaultRoots(), diags)

	if got := h.Types[0].Parent; got != "UcoObject" {
		t.Errorf("Device parent = %q, want UcoObject", got)
	}
	if got := h.Types[2].Parent; got != "PropertyBundle" {
		t.Errorf("Widget parent = %q, want PropertyBundle", got)
	}
	multi := diags.Of(DiagMultiParent)
	if len(multi) != 2 || multi[0].Detail != "superclasses Artifact, UcoObject, using UcoObject" {
		t.Errorf("multi-parent diagnostics = %v", multi)
	}

	named := ResolveNames(h, DefaultRoots(), diags)
	if got := named.Types[0].Category; got != CategoryCore {
		t.Errorf("Device category = %q, want %q", got, CategoryCore)
	}
	if got := named.Types[2].Category; got != CategoryProp {
		t.Errorf("Widget category = %q, want %q", got, CategoryProp)
	}
}

func TestBuildHierarchy_MultiRange(t *testing.T) {
	src := &fakeSource{
		classTree:  "core:Thing\n",
		classes:    core("Thing"),
		properties: core("value"),
		domains:    map[string][]string{coreNS + "Thing": core("value")},
		ranges:     map[string][]string{coreNS + "value": {xsdNS + "string", xsdNS + "integer"}},
	}
	diags := NewDiagnostics()
	h := BuildHierarchy(src, DefaultRoots(), diags)

	decl := h.Properties["value"]
	if !decl.Ambiguous() || !reflect.DeepEqual(decl.Ranges, []string{"integer", "string"}) {
		t.Errorf("value = %+v", decl)
	}
	if !reflect.DeepEqual(h.Types[0].Properties, []string{"value"}) {
		t.Errorf("Thing properties = %v", h.Types[0].Properties)
	}
	if got := diags.Of(DiagMultiRange); len(got) != 1 || got[0].Detail != "integer, string" {
		t.Errorf("multi-range diagnostics = %v", got)
	}
}

func TestBuildHierarchy_UndeclaredTreeEntry(t *testing.T) {
	src := &fakeSource{classTree: "core:Ghost\n"}
	diags := NewDiagnostics()
	h := BuildHierarchy(src, DefaultRoots(), diags)
	if len(h.Types) != 1 || h.Types[0].Name != "Ghost" {
		t.Fatalf("types = %+v", h.Types)
	}
	if len(diags.Of(DiagGap)) != 1 {
		t.Errorf("gap diagnostics = %v", diags.Of(DiagGap))
	}
}
