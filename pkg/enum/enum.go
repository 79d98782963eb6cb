package enum

import (
	"fmt"
	"reflect"
)

var registry = map[reflect.Type]any{}

type values[T comparable] map[string]T

// New registers value under its string form and returns it, so enum
// declarations read as plain assignments.
func New[T comparable](value T) T {
	t := reflect.TypeOf(value)
	vs, ok := registry[t].(values[T])
	if !ok {
		vs = values[T]{}
		registry[t] = vs
	}

	vs[reflect.ValueOf(value).String()] = value
	return value
}

// ToEnum maps a raw string onto a registered value of T.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	vs, ok := registry[reflect.TypeOf(zero)].(values[T])
	if !ok {
		return zero, fmt.Errorf("no enum registered for %T", zero)
	}

	value, ok := vs[s]
	if !ok {
		return zero, fmt.Errorf("invalid %T value %q", zero, s)
	}

	return value, nil
}
