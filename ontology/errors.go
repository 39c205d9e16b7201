package ontology

import "fmt"

// LoadError is returned when an ontology file cannot be read or is not
// valid Turtle. It aborts a generation run.
type LoadError struct {
	Path  string
	Cause error
}

// Error returns the error message for LoadError.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load ontology %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause of the LoadError.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
