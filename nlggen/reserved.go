package nlggen

import (
	"fmt"
	"unicode"
)

// PythonReservedWords is the set of Python 3 keywords and soft keywords that
// cannot be used as parameter names in the generated module.
var PythonReservedWords = map[string]bool{
	// Literals
	"False": true, "None": true, "True": true,
	// Boolean operators
	"and": true, "or": true, "not": true, "is": true, "in": true,
	// Control flow
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"break": true, "continue": true, "pass": true, "return": true,
	"try": true, "except": true, "finally": true, "raise": true, "assert": true,
	// Definitions and scope
	"def": true, "class": true, "lambda": true, "global": true, "nonlocal": true,
	"del": true, "with": true, "as": true, "yield": true,
	// Imports
	"import": true, "from": true,
	// Async
	"async": true, "await": true,
	// Names the generated module binds itself
	"case": true, "case_doc": true, "parent_object": true, "core_object": true,
	"datetime": true, "Missing": true, "MISSING": true,
}

// IsPythonReserved reports whether a name collides with a Python keyword or
// a name the generated module defines. The check is case-sensitive, as
// Python is.
func IsPythonReserved(name string) bool {
	return PythonReservedWords[name]
}

// InvalidIdentifierError describes an ontology name that is not usable as a
// Python identifier as written.
type InvalidIdentifierError struct {
	Name   string
	Reason string
}

// Error returns the error message for InvalidIdentifierError.
func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Name, e.Reason)
}

// ValidatePythonIdentifier checks that a name can be emitted verbatim as a
// Python parameter name.
func ValidatePythonIdentifier(name string) error {
	if name == "" {
		return &InvalidIdentifierError{Name: name, Reason: "empty name"}
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return &InvalidIdentifierError{Name: name, Reason: "starts with a digit"}
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return &InvalidIdentifierError{Name: name, Reason: fmt.Sprintf("contains %q", r)}
		}
	}
	if IsPythonReserved(name) {
		return &InvalidIdentifierError{Name: name, Reason: "reserved word"}
	}
	return nil
}

// PythonIdentifier returns a usable Python name for an ontology name:
// invalid characters become underscores and reserved words get a trailing
// underscore.
func PythonIdentifier(name string) string {
	out := sanitize(name, "_")
	if IsPythonReserved(out) {
		out += "_"
	}
	return out
}
