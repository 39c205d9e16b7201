package caseapi

// Opt is an optional property value. The zero value is absent.
type Opt[T any] struct {
	value   T
	present bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, present: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether a value was supplied.
func (o Opt[T]) Present() bool {
	return o.present
}

// Properties maps property names to values passed to a factory method.
type Properties map[string]any

// Set stores the value of o under name when it is present.
func Set[T any](p Properties, name string, o Opt[T]) {
	if v, ok := o.Get(); ok {
		p[name] = v
	}
}
