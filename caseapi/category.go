package caseapi

// Category is the closed set of object kinds a constructor can produce.
type Category int

// Object categories.
const (
	CoreCategory Category = iota + 1
	DuckCategory
	SubCategory
	PropertyBundle
	// NodeCategory is a plain typed node with no category checks.
	NodeCategory
)

var categoryNames = map[Category]string{
	CoreCategory:   "CoreCategory",
	DuckCategory:   "DuckCategory",
	SubCategory:    "SubCategory",
	PropertyBundle: "PropertyBundle",
	NodeCategory:   "Node",
}

// String returns the category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Category(?)"
}

// Is reports whether an object of category c with root category root
// satisfies a check for want. Sub-category objects satisfy the check for
// the root category they descend from.
func (c Category) Is(want Category, root Category) bool {
	if c == want {
		return true
	}
	return c == SubCategory && root == want
}
