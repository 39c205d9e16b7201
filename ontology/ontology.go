// Package ontology loads Turtle ontologies and answers the hierarchy and
// relationship queries the generator resolves types from.
package ontology

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deiu/rdf2go"
)

// Handle is a loaded ontology graph together with the prefix table declared
// in its source text.
type Handle struct {
	// Path is the file the ontology was loaded from.
	Path string

	graph      *rdf2go.Graph
	prefixes   map[string]string // namespace IRI -> prefix label
	classes    map[string]bool
	properties map[string]bool
}

// Load reads and parses a Turtle ontology file.
func Load(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return Parse(path, data)
}

// Parse parses Turtle source. The name is used as the graph base and in errors.
func Parse(name string, data []byte) (*Handle, error) {
	g := rdf2go.NewGraph(baseURI(name))
	if err := g.Parse(bytes.NewReader(data), "text/turtle"); err != nil {
		return nil, &LoadError{Path: name, Cause: err}
	}

	h := &Handle{
		Path:       name,
		graph:      g,
		prefixes:   scanPrefixes(data),
		classes:    make(map[string]bool),
		properties: make(map[string]bool),
	}
	for t := range g.IterTriples() {
		subj, ok := t.Subject.(*rdf2go.Resource)
		if !ok || t.Predicate.RawValue() != iriType {
			continue
		}
		obj := t.Object.RawValue()
		switch {
		case isClassType(obj):
			h.classes[subj.URI] = true
		case isPropertyType(obj):
			h.properties[subj.URI] = true
		}
	}
	return h, nil
}

func baseURI(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return "file://" + filepath.ToSlash(name)
}

// scanPrefixes reads @prefix and PREFIX declarations from the raw text.
func scanPrefixes(data []byte) map[string]string {
	prefixes := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "@prefix") && !strings.HasPrefix(trimmed, "PREFIX") {
			continue
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 3 {
			continue
		}
		label := strings.TrimSuffix(parts[1], ":")
		ns := strings.Trim(strings.TrimSuffix(parts[2], "."), "<>")
		if ns == "" {
			continue
		}
		prefixes[ns] = label
	}
	return prefixes
}

// Len returns the number of triples in the loaded graph.
func (h *Handle) Len() int {
	return h.graph.Len()
}

// Classes returns the IRIs of all declared named classes, sorted.
func (h *Handle) Classes() []string {
	return sortedKeys(h.classes)
}

// Properties returns the IRIs of all declared named properties, sorted.
func (h *Handle) Properties() []string {
	return sortedKeys(h.properties)
}

// Prefixes returns a copy of the namespace to prefix-label table.
func (h *Handle) Prefixes() map[string]string {
	out := make(map[string]string, len(h.prefixes))
	for ns, label := range h.prefixes {
		out[ns] = label
	}
	return out
}

// DomainOf returns the properties whose rdfs:domain is the given type.
func (h *Handle) DomainOf(typeIRI string) []string {
	var out []string
	for _, t := range h.graph.All(nil, rdf2go.NewResource(iriDomain), rdf2go.NewResource(typeIRI)) {
		if r, ok := t.Subject.(*rdf2go.Resource); ok {
			out = append(out, r.URI)
		}
	}
	return uniqueSorted(out)
}

// RangesOf returns the declared rdfs:range types of a property.
func (h *Handle) RangesOf(propIRI string) []string {
	return h.objects(propIRI, iriRange)
}

// DirectSuperclasses returns the named rdfs:subClassOf targets of a type.
// Anonymous restriction classes are not included.
func (h *Handle) DirectSuperclasses(typeIRI string) []string {
	return h.objects(typeIRI, iriSubClassOf)
}

// DirectSuperproperties returns the named rdfs:subPropertyOf targets of a property.
func (h *Handle) DirectSuperproperties(propIRI string) []string {
	return h.objects(propIRI, iriSubPropertyOf)
}

func (h *Handle) objects(subject, predicate string) []string {
	var out []string
	for _, t := range h.graph.All(rdf2go.NewResource(subject), rdf2go.NewResource(predicate), nil) {
		if r, ok := t.Object.(*rdf2go.Resource); ok {
			out = append(out, r.URI)
		}
	}
	return uniqueSorted(out)
}

// QName renders an IRI as prefix:Local when a declared namespace matches,
// as the full IRI when it carries a fragment, and otherwise as its last
// path segment.
func (h *Handle) QName(iri string) string {
	best := ""
	for ns := range h.prefixes {
		if len(ns) > len(best) && len(iri) > len(ns) && strings.HasPrefix(iri, ns) {
			best = ns
		}
	}
	if best != "" {
		return h.prefixes[best] + ":" + iri[len(best):]
	}
	if strings.Contains(iri, "#") {
		return iri
	}
	trimmed := strings.TrimRight(iri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
