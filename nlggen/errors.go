package nlggen

import "fmt"

// UnsupportedCardinalityError is reported for restrictions whose required
// or optional status cannot be decided, such as qualifiedCardinality 0.
type UnsupportedCardinalityError struct {
	Field string
	Value string
}

// Error returns the error message for UnsupportedCardinalityError.
func (e *UnsupportedCardinalityError) Error() string {
	return fmt.Sprintf("unsupported cardinality %s %q, parameter left unchecked", e.Field, e.Value)
}

// RenderError is returned when a generated module cannot be produced or
// fails verification.
type RenderError struct {
	Target string // "python" or "go"
	Cause  error
}

// Error returns the error message for RenderError.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Target, e.Cause)
}

// Unwrap returns the underlying cause of the RenderError.
func (e *RenderError) Unwrap() error {
	return e.Cause
}
