package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/bodyparser"
	"github.com/Suhaibinator/SRegistrar/pkg/cors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Loader reads and validates configuration files.
type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadFile reads the YAML file at path over the defaults.
func (l *Loader) LoadFile(path string) (*File, error) {
	if path == "" {
		return nil, ErrConfigNotFound
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.Load(data)
}

// Load parses YAML data over the defaults and validates the result.
func (l *Loader) Load(data []byte) (*File, error) {
	file := l.Defaults()

	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML config: %w", ErrInvalidConfig, err)
	}

	if err := l.Validate(file); err != nil {
		return nil, err
	}

	return file, nil
}

// Validate checks struct constraints, including the rate limits nested in
// plugin options.
func (l *Loader) Validate(file *File) error {
	if err := l.validator.Struct(file); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	for name, plugin := range file.Plugins {
		if rl, ok := plugin.RateLimit.Get(); ok && rl != nil {
			if err := l.validator.Struct(rl); err != nil {
				return fmt.Errorf("%w: plugin %q rate_limit: %w", ErrInvalidConfig, name, err)
			}
		}
	}

	return nil
}

// Defaults returns the configuration used for keys a file leaves out:
// no prefix, CORS enabled, auth off, no rate limit.
func (l *Loader) Defaults() *File {
	return &File{
		Server: Server{
			CORS:      cors.Enabled(),
			Auth:      auth.Off(),
			BodyLimit: bodyparser.DefaultLimit,
			Metrics: Metrics{
				Enabled:   true,
				Namespace: "sregistrar",
			},
			Log: Log{
				Level: "info",
			},
		},
		Plugins: map[string]Plugin{},
	}
}
