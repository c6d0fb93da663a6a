// Package resolve provides an optional value type and the ordered-fallback
// combinator used to pick a setting from route, plugin and server configuration.
package resolve

import (
	"gopkg.in/yaml.v3"
)

// Value holds an optional setting.
// The zero Value is absent. A set Value is defined even when it holds the zero
// value of T, so false, 0 and "" all take part in precedence.
type Value[T any] struct {
	v  T
	ok bool
}

// Some returns a defined Value holding v.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// IsSet reports whether the value is defined.
func (v Value[T]) IsSet() bool {
	return v.ok
}

// Get returns the held value and whether it is defined.
func (v Value[T]) Get() (T, bool) {
	return v.v, v.ok
}

// Or returns the held value, or fallback when the value is absent.
func (v Value[T]) Or(fallback T) T {
	if v.ok {
		return v.v
	}
	return fallback
}

// First returns the first defined value among levels, ordered from the most
// specific to the least specific. It returns an absent Value if none is defined.
func First[T any](levels ...Value[T]) Value[T] {
	for _, level := range levels {
		if level.ok {
			return level
		}
	}
	return None[T]()
}

// UnmarshalYAML implements yaml.Unmarshaler.
// yaml.v3 does not call it for null nodes or missing keys, so both stay absent.
func (v *Value[T]) UnmarshalYAML(node *yaml.Node) error {
	var decoded T
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	v.v = decoded
	v.ok = true
	return nil
}
