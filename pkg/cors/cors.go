// Package cors decides which CORS middleware a route gets.
// Header handling itself is delegated to github.com/go-chi/cors.
package cors

import (
	"fmt"
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	chicors "github.com/go-chi/cors"
	"gopkg.in/yaml.v3"
)

type directiveKind int

const (
	kindEnabled directiveKind = iota
	kindDisabled
	kindCustom
)

// Options configures a custom CORS policy.
type Options struct {
	AllowedOrigins     []string                                   `yaml:"allowed_origins"`
	AllowOriginFunc    func(r *http.Request, origin string) bool `yaml:"-"`
	AllowedMethods     []string                                   `yaml:"allowed_methods"`
	AllowedHeaders     []string                                   `yaml:"allowed_headers"`
	ExposedHeaders     []string                                   `yaml:"exposed_headers"`
	AllowCredentials   bool                                       `yaml:"allow_credentials"`
	MaxAge             int                                        `yaml:"max_age"`
	OptionsPassthrough bool                                       `yaml:"options_passthrough"`
}

// Directive is the CORS setting of a route, plugin or server.
// The zero Directive is Enabled.
type Directive struct {
	kind    directiveKind
	options Options
}

// Enabled leaves CORS to the server's default posture.
func Enabled() Directive {
	return Directive{kind: kindEnabled}
}

// Disabled turns CORS off for the route.
func Disabled() Directive {
	return Directive{kind: kindDisabled}
}

// Custom enforces CORS with the given options.
func Custom(opts Options) Directive {
	return Directive{kind: kindCustom, options: opts}
}

// IsCustom reports whether the directive carries its own options.
func (d Directive) IsCustom() bool {
	return d.kind == kindCustom
}

// Options returns the custom options and whether the directive is custom.
func (d Directive) Options() (Options, bool) {
	return d.options, d.kind == kindCustom
}

// String returns "enabled", "disabled" or "custom".
func (d Directive) String() string {
	switch d.kind {
	case kindDisabled:
		return "disabled"
	case kindCustom:
		return "custom"
	default:
		return "enabled"
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
// It accepts true, false, or a mapping of Options.
func (d *Directive) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return fmt.Errorf("cors: expected true, false or options at line %d: %w", node.Line, err)
		}
		if enabled {
			*d = Enabled()
		} else {
			*d = Disabled()
		}
		return nil
	case yaml.MappingNode:
		var opts Options
		if err := node.Decode(&opts); err != nil {
			return fmt.Errorf("cors: invalid options at line %d: %w", node.Line, err)
		}
		*d = Custom(opts)
		return nil
	default:
		return fmt.Errorf("cors: expected true, false or options at line %d", node.Line)
	}
}

// Middleware returns the CORS middleware for a resolved directive.
// Enabled and Disabled both yield a pass-through middleware; only custom
// options install header handling. The result is never nil.
func Middleware(d Directive) common.Middleware {
	opts, ok := d.Options()
	if !ok {
		return common.Noop
	}

	return chicors.Handler(chicors.Options{
		AllowedOrigins:     opts.AllowedOrigins,
		AllowOriginFunc:    opts.AllowOriginFunc,
		AllowedMethods:     opts.AllowedMethods,
		AllowedHeaders:     opts.AllowedHeaders,
		ExposedHeaders:     opts.ExposedHeaders,
		AllowCredentials:   opts.AllowCredentials,
		MaxAge:             opts.MaxAge,
		OptionsPassthrough: opts.OptionsPassthrough,
	})
}
