package api

import "encoding/json"

type optState uint8

const (
	stateUnset optState = iota
	stateNull
	stateSet
)

// Opt is a field value that distinguishes "not supplied" (unset) from an
// explicit null and from a real value. The zero Opt is unset.
type Opt[T any] struct {
	v  T
	st optState
}

// Some wraps a value.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, st: stateSet} }

// Null is an explicitly cleared value.
func Null[T any]() Opt[T] { return Opt[T]{st: stateNull} }

// Unset is the "not supplied" sentinel.
func Unset[T any]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) IsUnset() bool { return o.st == stateUnset }
func (o Opt[T]) IsNull() bool  { return o.st == stateNull }
func (o Opt[T]) IsSet() bool   { return o.st == stateSet }

// IsZero lets encoding/json omitzero drop unset fields.
func (o Opt[T]) IsZero() bool { return o.st == stateUnset }

// Get returns the value and whether one is present.
func (o Opt[T]) Get() (T, bool) { return o.v, o.st == stateSet }

// OrZero returns the value, or T's zero value when unset or null.
func (o Opt[T]) OrZero() T { return o.v }

// Any returns the value as an interface, nil for null and unset.
func (o Opt[T]) Any() any {
	if o.st != stateSet {
		return nil
	}
	return o.v
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.st != stateSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

