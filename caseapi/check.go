package caseapi

import "fmt"

// Missing returns the error for an absent required property.
func Missing(fn, property string) error {
	return &AssertionError{Function: fn, Property: property, Reason: "is required"}
}

// CheckObject verifies that obj belongs to category want and, when typeTag
// is not empty, carries that ontology type.
func CheckObject(fn, property string, obj *Object, want Category, typeTag string) error {
	expected := want.String()
	if typeTag != "" {
		expected = typeTag
	}
	if obj == nil || !obj.Category.Is(want, obj.Root) || (typeTag != "" && obj.Type != typeTag) {
		return &AssertionError{Function: fn, Property: property, Reason: "must be of type " + expected}
	}
	return nil
}

// CheckObjects applies CheckObject to every element of objs.
func CheckObjects(fn, property string, objs []*Object, want Category, typeTag string) error {
	for _, obj := range objs {
		if err := CheckObject(fn, property, obj, want, typeTag); err != nil {
			expected := want.String()
			if typeTag != "" {
				expected = typeTag
			}
			return &AssertionError{Function: fn, Property: property, Reason: "must be of type List of " + expected}
		}
	}
	return nil
}

// CheckParent verifies the parent object handed to a sub-category constructor.
func CheckParent(fn string, parent *Object, want Category, typeTag string) error {
	return CheckObject(fn, "parent_object", parent, want, typeTag)
}

// CheckCount verifies a list length against cardinality bounds. A negative
// hi means unbounded.
func CheckCount(fn, property string, n, lo, hi int) error {
	switch {
	case hi >= 0 && lo == hi && n != lo:
		return &AssertionError{Function: fn, Property: property, Reason: fmt.Sprintf("must have exactly %d values, got %d", lo, n)}
	case n < lo:
		return &AssertionError{Function: fn, Property: property, Reason: fmt.Sprintf("must have at least %d values, got %d", lo, n)}
	case hi >= 0 && n > hi:
		return &AssertionError{Function: fn, Property: property, Reason: fmt.Sprintf("must have at most %d values, got %d", hi, n)}
	}
	return nil
}
