package caseapi

import (
	"errors"
	"fmt"
)

// ErrNodeType is returned by CreateNode when no type is given.
var ErrNodeType = errors.New("caseapi: node type is required")

// AssertionError is returned by generated constructors when a caller
// violates the ontology: a required property is missing or a value has the
// wrong type or count.
type AssertionError struct {
	Function string
	Property string
	Reason   string
}

// Error returns the error message for AssertionError.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("[%s] %s %s.", e.Function, e.Property, e.Reason)
}

// ValueError is returned when a property value cannot be stored in the graph.
type ValueError struct {
	Property string
	Value    any
}

// Error returns the error message for ValueError.
func (e *ValueError) Error() string {
	return fmt.Sprintf("caseapi: unsupported value type %T for property %s", e.Value, e.Property)
}
