// Package nlggen generates ontology-checked constructor modules from CASE/UCO
// ontologies.
package nlggen

import "strings"

// RootParent is the parent of a type with no recognized superclass.
const RootParent = "root"

// Category name prefixes assigned by ResolveNames.
const (
	CategoryDuck = "duck_"
	CategoryCore = "core_"
	CategoryProp = "prop_"
	subSuffix    = "sub_"
)

// Hierarchy holds the resolved class and property declarations of one
// ontology, as handed from BuildHierarchy to the later stages.
type Hierarchy struct {
	// Types lists every resolved class in class-tree order.
	Types []*OntologyType
	// Properties maps property names to their declarations.
	Properties map[string]*PropertyDecl
}

// OntologyType is one class in the resolved hierarchy.
type OntologyType struct {
	// Name is the namespace-stripped class name.
	Name string
	// Level is the nesting depth in the class tree (0 = top level).
	Level int
	// Parent is the nearest enclosing type, a root category, or RootParent.
	Parent string
	// Index is the position of the type in the class tree.
	Index int
	// Properties are the names of properties whose domain includes this type, sorted.
	Properties []string
	// Category is the function-name prefix assigned by ResolveNames.
	Category string
}

// PropertyDecl is one ontology property.
type PropertyDecl struct {
	// Name is the namespace-stripped property name.
	Name string
	// Ranges are the declared range type names, sorted.
	Ranges []string
	// Level is the nesting depth in the property tree.
	Level int
	// Parent is the enclosing property in the property tree, or RootParent.
	Parent string
}

// Ambiguous reports whether the property declares more than one range type.
func (p *PropertyDecl) Ambiguous() bool {
	return len(p.Ranges) > 1
}

// Bucket is the generation group a category belongs to.
type Bucket string

// Generation buckets.
const (
	BucketUnknown Bucket = ""
	BucketSub     Bucket = "SUB"
	BucketDuck    Bucket = "DUCK"
	BucketCore    Bucket = "CORE"
	BucketProp    Bucket = "PROP"
)

// BucketOf maps a category prefix such as "core_sub_" to its bucket.
// Any sub category lands in BucketSub.
func BucketOf(category string) Bucket {
	upper := strings.ToUpper(category)
	switch {
	case strings.Contains(upper, "SUB"):
		return BucketSub
	case strings.Contains(upper, "DUCK"):
		return BucketDuck
	case strings.Contains(upper, "CORE"):
		return BucketCore
	case strings.Contains(upper, "PROP"):
		return BucketProp
	}
	return BucketUnknown
}

// Wrapper names the object class a category's functions produce or accept:
// CoreCategory, DuckCategory or PropertyBundle. Sub categories take the
// wrapper of the root they descend from. Returns "" for unknown categories.
func Wrapper(category string) string {
	upper := strings.ToUpper(category)
	switch {
	case strings.Contains(upper, "CORE"):
		return "CoreCategory"
	case strings.Contains(upper, "DUCK"):
		return "DuckCategory"
	case strings.Contains(upper, "PROP"):
		return "PropertyBundle"
	}
	return ""
}

// CategoryTitle renders a category prefix as a section title: "core_sub_"
// becomes "CORE SUB".
func CategoryTitle(category string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(category), "_", " "))
}
