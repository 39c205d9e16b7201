package nlggen

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar for printed tree lines ---

// treeLine parses one printed tree line: zero or more "----" depth markers
// followed by the qualified entry name.
type treeLine struct {
	Depth []string `parser:"@Dash*"`
	Name  []string `parser:"@Name+"`
}

var treeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dash", Pattern: `----`},
	{Name: "Name", Pattern: `[^\s]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var treeParser = participle.MustBuild[treeLine](
	participle.Lexer(treeLexer),
	participle.Elide("Whitespace"),
)

// TreeEntry is one resolved line of a printed hierarchy.
type TreeEntry struct {
	// Name is the namespace-stripped entry name.
	Name string
	// Level is the number of depth markers in front of the name.
	Level int
	// Parent is the nearest preceding entry at a shallower depth, or RootParent.
	Parent string
	// Index is the position of the entry among resolved entries.
	Index int
}

// ResolveTree reads a printed hierarchy and assigns each entry its depth and
// parent. The parent is found by walking back from the preceding line until
// a line with a strictly smaller depth turns up, so depth may jump by more
// than one level between siblings' subtrees.
//
// Lines whose name has no '#' or ':' separator are skipped and reported as
// unknown namespaces. An entry printed more than once keeps its first
// position; later occurrences are reported as multi-parent.
func ResolveTree(text string, diags *Diagnostics) []TreeEntry {
	type scanned struct {
		name  string
		level int
	}
	var (
		lines   []scanned
		entries []TreeEntry
		seen    = make(map[string]bool)
	)

	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parsed, err := treeParser.ParseString("", raw)
		if err != nil {
			diags.Add(DiagTreeSyntax, strings.TrimSpace(raw), err.Error())
			continue
		}
		qualified := strings.Join(parsed.Name, " ")
		name, ok := LocalName(qualified)
		if !ok {
			diags.Add(DiagUnknownNamespace, qualified, "")
			continue
		}
		level := len(parsed.Depth)

		parent := RootParent
		if level > 0 {
			parent = ""
			for i := len(lines) - 1; i >= 0; i-- {
				if lines[i].level < level {
					parent = lines[i].name
					break
				}
			}
			if parent == "" {
				diags.Add(DiagGap, name, fmt.Sprintf("no enclosing entry above depth %d, parent set to root", level))
				parent = RootParent
			}
		}
		lines = append(lines, scanned{name: name, level: level})

		if seen[name] {
			diags.Add(DiagMultiParent, name, fmt.Sprintf("also listed under %s, first position kept", parent))
			continue
		}
		seen[name] = true
		entries = append(entries, TreeEntry{
			Name:   name,
			Level:  level,
			Parent: parent,
			Index:  len(entries),
		})
	}
	return entries
}

// LocalName strips the namespace from a qualified name: the text after the
// final '#', or failing that after the final ':'. Surrounding '*', '<', '>'
// and whitespace are removed. It reports false when neither separator is
// present or nothing remains.
func LocalName(qualified string) (string, bool) {
	var name string
	switch {
	case strings.Contains(qualified, "#"):
		name = qualified[strings.LastIndex(qualified, "#")+1:]
	case strings.Contains(qualified, ":"):
		name = qualified[strings.LastIndex(qualified, ":")+1:]
	default:
		return "", false
	}
	name = strings.Trim(name, "*<> \t")
	return name, name != ""
}
