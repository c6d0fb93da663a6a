// Package auth holds the authentication side of route registration: the auth
// setting of a route, plugin or server, the write-once registry of named
// authentication methods, and the built-in methods.
package auth

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Setting selects the authentication method of a route, plugin or server.
// It is either the name of a registered method (Use) or Off.
type Setting struct {
	method string
	off    bool
}

// Use selects the registered method called name.
func Use(name string) Setting {
	return Setting{method: name}
}

// Off makes the route public.
func Off() Setting {
	return Setting{off: true}
}

// IsOff reports whether authentication is turned off.
func (s Setting) IsOff() bool {
	return s.off
}

// Method returns the selected method name. It is empty when the setting is Off.
func (s Setting) Method() string {
	return s.method
}

// String returns the method name, or "false" when authentication is off.
func (s Setting) String() string {
	if s.off {
		return "false"
	}
	return s.method
}

// UnmarshalYAML implements yaml.Unmarshaler. It accepts a method name or false.
func (s *Setting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("auth: expected a method name or false at line %d", node.Line)
	}

	if node.ShortTag() == "!!bool" {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		if enabled {
			return fmt.Errorf("auth: true is not a method name at line %d", node.Line)
		}
		*s = Off()
		return nil
	}

	*s = Use(node.Value)
	return nil
}
