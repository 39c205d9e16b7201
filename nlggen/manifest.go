package nlggen

import (
	"fmt"
	"io"
	"strings"
)

// ManifestEntry records one generated property assertion for auditing.
type ManifestEntry struct {
	Function string
	Property string
	Required bool
	Check    CheckKind
	List     bool
}

// String formats the entry as "REQUIRED  CASE    SINGLE  property".
func (e ManifestEntry) String() string {
	req := "OPTIONAL"
	if e.Required {
		req = "REQUIRED"
	}
	shape := "SINGLE"
	if e.List {
		shape = "LIST"
	}
	return fmt.Sprintf("%-8s  %-6s  %-6s  %s", req, e.Check, shape, e.Property)
}

func manifestEntries(fn FunctionSpec) []ManifestEntry {
	var out []ManifestEntry
	for _, p := range fn.Params {
		if p.Check == CheckNone {
			continue
		}
		out = append(out, ManifestEntry{
			Function: fn.Name,
			Property: p.Property,
			Required: p.Required,
			Check:    p.Check,
			List:     p.List,
		})
	}
	return out
}

// WriteManifest writes the manifest grouped under each function name.
func WriteManifest(w io.Writer, entries []ManifestEntry) error {
	var b strings.Builder
	current := ""
	for _, e := range entries {
		if e.Function != current {
			if current != "" {
				b.WriteByte('\n')
			}
			current = e.Function
			fmt.Fprintf(&b, "%s\n", current)
		}
		fmt.Fprintf(&b, "    %s\n", e)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
