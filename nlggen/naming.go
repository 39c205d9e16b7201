package nlggen

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// RootCategories names the two ontology classes that anchor the core and
// property-bundle categories.
type RootCategories struct {
	Core     string
	Property string
}

// DefaultRoots returns the UCO root category names.
func DefaultRoots() RootCategories {
	return RootCategories{Core: "UcoObject", Property: "PropertyBundle"}
}

// ResolveNames assigns every type its function-name category and returns a
// new hierarchy; the input is left untouched.
//
// Types are resolved as a worklist in class-tree order. A type under root
// becomes duck_, one under the core or property root becomes core_ or prop_,
// and one under another resolved type takes that type's category plus sub_.
// Types whose parent is unknown are demoted to root. When a full pass makes
// no progress the remaining types are demoted as well, so the loop ends after
// at most len(Types)+1 passes.
func ResolveNames(h *Hierarchy, roots RootCategories, diags *Diagnostics) *Hierarchy {
	out := &Hierarchy{
		Types:      make([]*OntologyType, len(h.Types)),
		Properties: h.Properties,
	}
	known := make(map[string]*OntologyType, len(h.Types))
	for i, t := range h.Types {
		c := *t
		c.Properties = append([]string(nil), t.Properties...)
		c.Category = ""
		out.Types[i] = &c
		known[c.Name] = &c
	}

	pending := make([]*OntologyType, len(out.Types))
	copy(pending, out.Types)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Index < pending[j].Index })

	for pass := 0; len(pending) > 0 && pass <= len(out.Types); pass++ {
		var retry []*OntologyType
		progress := false
		for _, t := range pending {
			switch t.Parent {
			case RootParent:
				t.Category = CategoryDuck
			case roots.Core:
				checkRootLevel(t, diags)
				t.Category = CategoryCore
			case roots.Property:
				checkRootLevel(t, diags)
				t.Category = CategoryProp
			default:
				parent, ok := known[t.Parent]
				switch {
				case !ok:
					diags.Add(DiagGap, t.Name, fmt.Sprintf("parent %s does not exist in the class tree, parent set to root", t.Parent))
					t.Parent = RootParent
					t.Category = CategoryDuck
				case parent.Category == "":
					retry = append(retry, t)
					continue
				default:
					t.Category = parent.Category + subSuffix
				}
			}
			progress = true
		}
		if !progress {
			for _, t := range retry {
				diags.Add(DiagCategory, t.Name, fmt.Sprintf("parent %s never resolved, parent set to root", t.Parent))
				t.Parent = RootParent
				t.Category = CategoryDuck
			}
			retry = nil
		}
		pending = retry
	}
	return out
}

func checkRootLevel(t *OntologyType, diags *Diagnostics) {
	if t.Level != 0 && t.Level != 1 {
		diags.Add(DiagCategory, t.Name,
			fmt.Sprintf("%s can only be the parent of a type at nesting level 0 or 1, found level %d", t.Parent, t.Level))
	}
}

// CategoryGroup is the set of types sharing one category.
type CategoryGroup struct {
	Category string
	Types    []*OntologyType
}

// GroupByCategory buckets resolved types by category. Groups are sorted by
// category and types within a group by name.
func GroupByCategory(h *Hierarchy) []CategoryGroup {
	byCategory := make(map[string][]*OntologyType)
	for _, t := range h.Types {
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}
	groups := make([]CategoryGroup, 0, len(byCategory))
	for category, types := range byCategory {
		sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
		groups = append(groups, CategoryGroup{Category: category, Types: types})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// --- Identifier helpers ---

// splitName splits a string on hyphens, underscores, dots and spaces.
func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
}

// CommonAcronyms defines abbreviations that are fully uppercased in Go names.
var CommonAcronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"uuid": "UUID",
	"api":  "API",
	"http": "HTTP",
	"ip":   "IP",
	"mac":  "MAC",
}

// ToPascalCase joins the parts of a name with their first letter uppercased.
// Unlike snake_case conversion it keeps the remaining letters as written, so
// ontology names already in camelCase survive: "core_sub_BenevolentRole"
// becomes "CoreSubBenevolentRole".
func ToPascalCase(name string) string {
	var b strings.Builder
	for _, part := range splitName(name) {
		if acronym, ok := CommonAcronyms[strings.ToLower(part)]; ok {
			b.WriteString(acronym)
			continue
		}
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return sanitize(b.String(), "X")
}

// sanitize replaces characters that are not letters, digits or underscores
// and prefixes names that would start with a digit.
func sanitize(name, digitPrefix string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return digitPrefix
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = digitPrefix + out
	}
	return out
}
