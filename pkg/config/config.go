// Package config loads server and plugin registration settings from YAML.
package config

import (
	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/cors"
	"github.com/Suhaibinator/SRegistrar/pkg/middleware"
	"github.com/Suhaibinator/SRegistrar/pkg/resolve"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// File is the root of a configuration file.
type File struct {
	Server  Server            `yaml:"server"`
	Plugins map[string]Plugin `yaml:"plugins" validate:"dive"`
}

// Server holds the server-level defaults every plugin route falls back to.
type Server struct {
	// Prefix is prepended to every route path
	Prefix string `yaml:"prefix" validate:"omitempty,startswith=/"`

	// CORS is the server CORS directive: true, false or an options mapping
	CORS cors.Directive `yaml:"cors"`

	// Auth is the server auth setting: a method name or false
	Auth auth.Setting `yaml:"auth"`

	// RateLimit is the server rate limit. Absent means no limiting.
	RateLimit *middleware.RateLimitConfig `yaml:"rate_limit" validate:"omitempty"`

	// IP configures client IP extraction
	IP *middleware.IPConfig `yaml:"ip" validate:"omitempty"`

	// BodyLimit is the maximum JSON body size in bytes
	BodyLimit int64 `yaml:"body_limit" validate:"gte=0"`

	// TraceID enables X-Request-ID handling
	TraceID bool `yaml:"trace_id"`

	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`
}

// Metrics configures the Prometheus collectors.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Plugin holds the route options of one plugin. Absent keys fall back to
// the server settings.
type Plugin struct {
	Prefix    resolve.Value[string]                       `yaml:"prefix"`
	CORS      resolve.Value[cors.Directive]               `yaml:"cors"`
	Auth      resolve.Value[auth.Setting]                 `yaml:"auth"`
	RateLimit resolve.Value[*middleware.RateLimitConfig] `yaml:"rate_limit"`
}

// NewLogger builds the zap logger described by l.
func (l Log) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
