package nlggen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Cardinality fields recognized in OWL restrictions, plus the default
// recorded when a property carries no explicit cardinality.
const (
	FieldMinQualified  = "minQualifiedCardinality"
	FieldQualified     = "qualifiedCardinality"
	FieldMaxQualified  = "maxQualifiedCardinality"
	FieldNoCardinality = "noCardinality"

	// ValueAny is the value of an unconstrained cardinality.
	ValueAny = "any"
)

// DefaultNamespaces are the ontology namespaces whose entries start a new
// type context in the restriction scan.
var DefaultNamespaces = []string{
	"http://unifiedcyberontology.org",
	"http://case.example.org",
}

// Constraint is the cardinality restriction for one (type, property) pair.
type Constraint struct {
	// Field is one of the Field* constants.
	Field string
	// Value is the numeric literal, or ValueAny.
	Value string
	// Datatype is the XSD datatype of the cardinality literal.
	Datatype string
	// Recorded reports whether the restriction scan produced this entry.
	Recorded bool
}

// Unconstrained is the constraint returned for pairs the scan never saw.
var Unconstrained = Constraint{Field: FieldNoCardinality, Value: ValueAny, Datatype: "string"}

// CardinalityTable maps type -> property -> constraint.
type CardinalityTable struct {
	entries map[string]map[string]Constraint
}

// NewCardinalityTable returns an empty table.
func NewCardinalityTable() *CardinalityTable {
	return &CardinalityTable{entries: make(map[string]map[string]Constraint)}
}

// Set records a constraint, replacing any previous one for the pair.
func (t *CardinalityTable) Set(typeName, prop string, c Constraint) {
	props, ok := t.entries[typeName]
	if !ok {
		props = make(map[string]Constraint)
		t.entries[typeName] = props
	}
	c.Recorded = true
	props[prop] = c
}

// Has reports whether a constraint was recorded for the pair.
func (t *CardinalityTable) Has(typeName, prop string) bool {
	_, ok := t.entries[typeName][prop]
	return ok
}

// Lookup returns the recorded constraint, or Unconstrained.
func (t *CardinalityTable) Lookup(typeName, prop string) Constraint {
	if t != nil {
		if c, ok := t.entries[typeName][prop]; ok {
			return c
		}
	}
	return Unconstrained
}

// Types returns the type names with at least one recorded constraint, sorted.
func (t *CardinalityTable) Types() []string {
	out := make([]string, 0, len(t.entries))
	for name := range t.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Properties returns the properties recorded for a type, sorted.
func (t *CardinalityTable) Properties(typeName string) []string {
	out := make([]string, 0, len(t.entries[typeName]))
	for name := range t.entries[typeName] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseRestrictionsFile scans an ontology file for cardinality restrictions.
func ParseRestrictionsFile(path string, namespaces []string) (*CardinalityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read restrictions: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseRestrictions(f, namespaces)
}

// ParseRestrictions scans raw Turtle text line by line for OWL cardinality
// restrictions. It works on text rather than triples because restriction
// blocks are anonymous nodes that lose their (type, property, cardinality)
// grouping once flattened.
//
// A line mentioning a registered namespace together with a "###" marker, or
// containing no whitespace at all, starts a new type context. Within it,
// owl:onProperty selects the current property and an indented line carrying
// a cardinality keyword and a "^^xsd:" literal records that restriction.
// Other non-blank lines record the noCardinality default for the current
// property unless something is already recorded. Malformed lines are skipped.
func ParseRestrictions(r io.Reader, namespaces []string) (*CardinalityTable, error) {
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces
	}
	table := NewCardinalityTable()
	var current, prop string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)

		switch {
		case isEntryBoundary(line, namespaces):
			i := strings.LastIndex(line, "#")
			if i < 0 {
				continue
			}
			if name := strings.Trim(line[i+1:], "<>;,. \t"); name != "" {
				current = name
				prop = ""
			}

		case strings.Contains(line, "@prefix") || strings.Contains(line, "@base"):
			continue

		case strings.Contains(line, "owl:onProperty"):
			fields := strings.Fields(strings.TrimSuffix(trimmed, ";"))
			if len(fields) == 0 {
				continue
			}
			if name, ok := LocalName(strings.Trim(fields[len(fields)-1], "<>;,. ")); ok {
				prop = name
			}

		case strings.Contains(strings.ToLower(line), "cardinality") && isIndented(line):
			c, ok := parseCardinality(trimmed)
			if !ok || current == "" || prop == "" {
				continue
			}
			table.Set(current, prop, c)

		case trimmed != "" && current != "":
			if prop != "" && !table.Has(current, prop) {
				table.Set(current, prop, Unconstrained)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan restrictions: %w", err)
	}
	return table, nil
}

// isEntryBoundary reports whether a line starts a new ontology entry.
func isEntryBoundary(line string, namespaces []string) bool {
	for _, ns := range namespaces {
		if !strings.Contains(line, ns) {
			continue
		}
		if strings.Contains(line, "###") || !strings.ContainsAny(line, " \t") {
			return true
		}
	}
	return false
}

func isIndented(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// parseCardinality extracts the field and typed literal from a line such as
// `owl:qualifiedCardinality "1"^^xsd:nonNegativeInteger ;`.
func parseCardinality(line string) (Constraint, bool) {
	var c Constraint
	for _, part := range strings.Fields(strings.TrimSuffix(line, ";")) {
		part = strings.TrimRight(part, ";,.")
		if strings.Contains(strings.ToLower(part), "cardinality") && !strings.Contains(part, "^^") {
			field := part[strings.LastIndex(part, ":")+1:]
			c.Field = strings.Trim(field, "<>")
			if i := strings.LastIndex(c.Field, "#"); i >= 0 {
				c.Field = c.Field[i+1:]
			}
		}
		if i := strings.Index(part, "^^xsd:"); i >= 0 {
			c.Value = strings.Trim(part[:i], `"`)
			c.Datatype = part[i+len("^^xsd:"):]
		}
	}
	if c.Field == "" || c.Datatype == "" {
		return Constraint{}, false
	}
	return c, true
}
