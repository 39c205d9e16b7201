package ontology

import (
	"sort"
	"strings"
)

// TreeIndent is printed once per depth level in front of a tree entry.
const TreeIndent = "----"

// ClassTree prints the class hierarchy depth first, one class per line.
// Top-level lines are classes with no declared superclass; children follow
// their parent sorted by qualified name. A class with several declared
// superclasses is printed under each of them.
func (h *Handle) ClassTree() string {
	return h.printTree(h.Classes(), h.DirectSuperclasses)
}

// PropertyTree prints the property hierarchy the same way as ClassTree,
// following rdfs:subPropertyOf.
func (h *Handle) PropertyTree() string {
	return h.printTree(h.Properties(), h.DirectSuperproperties)
}

func (h *Handle) printTree(members []string, parentsOf func(string) []string) string {
	inSet := make(map[string]bool, len(members))
	for _, m := range members {
		inSet[m] = true
	}

	children := make(map[string][]string)
	var top []string
	for _, m := range members {
		hasParent := false
		for _, p := range parentsOf(m) {
			if p == m || !inSet[p] {
				continue
			}
			children[p] = append(children[p], m)
			hasParent = true
		}
		if !hasParent {
			top = append(top, m)
		}
	}
	byQName := func(list []string) {
		sort.SliceStable(list, func(i, j int) bool {
			return h.QName(list[i]) < h.QName(list[j])
		})
	}
	byQName(top)
	for _, list := range children {
		byQName(list)
	}

	var b strings.Builder
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var walk func(iri string, depth int)
	walk = func(iri string, depth int) {
		visited[iri] = true
		onPath[iri] = true
		b.WriteString(strings.Repeat(TreeIndent, depth))
		b.WriteString(h.QName(iri))
		b.WriteByte('\n')
		for _, c := range children[iri] {
			if !onPath[c] {
				walk(c, depth+1)
			}
		}
		delete(onPath, iri)
	}
	for _, t := range top {
		walk(t, 0)
	}

	// Members caught in a subclass cycle have no top-level ancestor.
	var rest []string
	for _, m := range members {
		if !visited[m] {
			rest = append(rest, m)
		}
	}
	byQName(rest)
	for _, m := range rest {
		if !visited[m] {
			walk(m, 0)
		}
	}
	return b.String()
}
