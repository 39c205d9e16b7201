package nlggen

import (
	"fmt"
	"sort"
	"strings"
)

// Source is the ontology view BuildHierarchy reads from. *ontology.Handle
// satisfies it.
type Source interface {
	ClassTree() string
	PropertyTree() string
	Classes() []string
	Properties() []string
	DomainOf(typeIRI string) []string
	RangesOf(propIRI string) []string
	DirectSuperclasses(typeIRI string) []string
	QName(iri string) string
}

// BuildHierarchy resolves the class and property trees of an ontology and
// attaches to every type the properties whose domain includes it.
//
// Top-level types take as parent their first declared superclass
// (alphabetically) that is a root category or a declared class, so types
// whose superclass lives in another ontology still reach their root
// category. When none resolves the first superclass is kept and naming
// demotes it. Properties with no usable range are dropped from every type
// that owns them.
func BuildHierarchy(src Source, roots RootCategories, diags *Diagnostics) *Hierarchy {
	h := &Hierarchy{Properties: make(map[string]*PropertyDecl)}

	propEntries := make(map[string]TreeEntry)
	for _, e := range ResolveTree(src.PropertyTree(), diags) {
		propEntries[e.Name] = e
	}
	for _, iri := range src.Properties() {
		name, ok := localIRI(src, iri, diags)
		if !ok {
			continue
		}
		if _, dup := h.Properties[name]; dup {
			diags.Add(DiagGap, name, fmt.Sprintf("property name declared in several namespaces, keeping the first (%s ignored)", iri))
			continue
		}
		decl := &PropertyDecl{Name: name, Parent: RootParent}
		if e, ok := propEntries[name]; ok {
			decl.Level = e.Level
			decl.Parent = e.Parent
		}
		decl.Ranges = localNames(src, src.RangesOf(iri), diags)
		switch {
		case len(decl.Ranges) == 0:
			diags.Add(DiagGap, name, "property has no usable range type, dropped")
		case decl.Ambiguous():
			diags.Add(DiagMultiRange, name, strings.Join(decl.Ranges, ", "))
		}
		h.Properties[name] = decl
	}

	classIRIs := make(map[string]string)
	for _, iri := range src.Classes() {
		name, ok := localIRI(src, iri, diags)
		if !ok {
			continue
		}
		if prev, dup := classIRIs[name]; dup {
			diags.Add(DiagGap, name, fmt.Sprintf("class name declared in several namespaces, keeping %s", prev))
			continue
		}
		classIRIs[name] = iri
	}

	for _, e := range ResolveTree(src.ClassTree(), diags) {
		t := &OntologyType{
			Name:   e.Name,
			Level:  e.Level,
			Parent: e.Parent,
			Index:  e.Index,
		}
		iri, ok := classIRIs[e.Name]
		if !ok {
			diags.Add(DiagGap, e.Name, "listed in the class tree but not declared as a class")
			h.Types = append(h.Types, t)
			continue
		}

		domain := localNames(src, src.DomainOf(iri), diags)
		if len(domain) == 0 {
			diags.Add(DiagGap, e.Name, "class has no properties")
		}
		for _, p := range domain {
			decl, ok := h.Properties[p]
			if !ok || len(decl.Ranges) == 0 {
				if !ok {
					diags.Add(DiagGap, p, "property in a domain but not declared, dropped")
				}
				continue
			}
			t.Properties = append(t.Properties, p)
		}

		if t.Level == 0 {
			supers := localNames(src, src.DirectSuperclasses(iri), diags)
			if len(supers) > 0 {
				t.Parent = supers[0]
				for _, s := range supers {
					if _, declared := classIRIs[s]; declared || s == roots.Core || s == roots.Property {
						t.Parent = s
						break
					}
				}
			}
			if len(supers) > 1 {
				diags.Add(DiagMultiParent, e.Name, fmt.Sprintf("superclasses %s, using %s", strings.Join(supers, ", "), t.Parent))
			}
		}
		h.Types = append(h.Types, t)
	}
	return h
}

func localIRI(src Source, iri string, diags *Diagnostics) (string, bool) {
	q := src.QName(iri)
	name, ok := LocalName(q)
	if !ok {
		diags.Add(DiagUnknownNamespace, q, "")
	}
	return name, ok
}

// localNames converts IRIs to sorted, de-duplicated local names, reporting
// the ones that cannot be namespace-split.
func localNames(src Source, iris []string, diags *Diagnostics) []string {
	seen := make(map[string]bool)
	var out []string
	for _, iri := range iris {
		name, ok := localIRI(src, iri, diags)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
