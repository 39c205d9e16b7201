package nlggen

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DiagnosticKind classifies a non-fatal generation finding.
type DiagnosticKind string

// Diagnostic kinds, in the order WriteTo reports them.
const (
	DiagUnknownNamespace DiagnosticKind = "unknown-namespace"
	DiagTreeSyntax       DiagnosticKind = "tree-syntax"
	DiagGap              DiagnosticKind = "ontology-gap"
	DiagMultiParent      DiagnosticKind = "multi-parent"
	DiagMultiRange       DiagnosticKind = "multi-range"
	DiagCategory         DiagnosticKind = "category"
	DiagCardinality      DiagnosticKind = "cardinality"
	DiagRenamed          DiagnosticKind = "renamed"
)

var diagnosticOrder = []DiagnosticKind{
	DiagUnknownNamespace,
	DiagTreeSyntax,
	DiagGap,
	DiagMultiParent,
	DiagMultiRange,
	DiagCategory,
	DiagCardinality,
	DiagRenamed,
}

var diagnosticTitles = map[DiagnosticKind]string{
	DiagUnknownNamespace: "Unknown namespaces",
	DiagTreeSyntax:       "Unparseable tree lines",
	DiagGap:              "Gaps or ambiguity in ontology",
	DiagMultiParent:      "Types with multiple parents",
	DiagMultiRange:       "Properties with multiple range types (not checked)",
	DiagCategory:         "Category resolution anomalies",
	DiagCardinality:      "Unsupported cardinality",
	DiagRenamed:          "Properties renamed to valid Python parameters",
}

// Diagnostic is one advisory finding.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string
	Detail  string
}

// String formats the diagnostic as a single line.
func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("[%s] %s", d.Kind, d.Subject)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Subject, d.Detail)
}

// Diagnostics collects findings across a generation run. Identical findings
// are recorded once. A nil *Diagnostics discards everything.
type Diagnostics struct {
	entries []Diagnostic
	seen    map[Diagnostic]bool
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: make(map[Diagnostic]bool)}
}

// Add records a finding.
func (d *Diagnostics) Add(kind DiagnosticKind, subject, detail string) {
	if d == nil {
		return
	}
	entry := Diagnostic{Kind: kind, Subject: subject, Detail: detail}
	if d.seen[entry] {
		return
	}
	d.seen[entry] = true
	d.entries = append(d.entries, entry)
}

// Entries returns the findings in the order they were recorded.
func (d *Diagnostics) Entries() []Diagnostic {
	if d == nil {
		return nil
	}
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

// Of returns the findings of one kind.
func (d *Diagnostics) Of(kind DiagnosticKind) []Diagnostic {
	if d == nil {
		return nil
	}
	var out []Diagnostic
	for _, e := range d.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded findings.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// WriteTo writes the findings grouped by kind.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, kind := range diagnosticOrder {
		group := d.Of(kind)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", diagnosticTitles[kind], len(group))
		for _, e := range group {
			if e.Detail == "" {
				fmt.Fprintf(&b, "  %s\n", e.Subject)
			} else {
				fmt.Fprintf(&b, "  %s: %s\n", e.Subject, e.Detail)
			}
		}
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Log emits every finding as a warning.
func (d *Diagnostics) Log(logger *slog.Logger) {
	if d == nil || logger == nil {
		return
	}
	for _, e := range d.entries {
		logger.Warn("ontology diagnostic",
			slog.String("kind", string(e.Kind)),
			slog.String("subject", e.Subject),
			slog.String("detail", e.Detail))
	}
}
