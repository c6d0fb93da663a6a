// Package router mounts plugin routes on an httprouter-based server.
// Every route gets a middleware pipeline assembled from route, plugin and
// server settings, with route settings taking precedence over plugin
// settings and plugin settings over server settings.
package router

import (
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/cors"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"github.com/Suhaibinator/SRegistrar/pkg/metrics"
	"github.com/Suhaibinator/SRegistrar/pkg/middleware"
	"github.com/Suhaibinator/SRegistrar/pkg/resolve"
	"github.com/Suhaibinator/SRegistrar/pkg/validation"
	"go.uber.org/zap"
)

// Config defines the server-level configuration of a Router.
// Prefix, CORS, Auth and RateLimit are the last fallback of every route.
type Config struct {
	Logger        *zap.Logger                 // Logger for all router operations
	Prefix        string                      // Prepended to every route path
	CORS          cors.Directive              // Server CORS directive; the zero value is cors.Enabled()
	Auth          auth.Setting                // Server auth setting; use auth.Off() for public routes by default
	RateLimit     *middleware.RateLimitConfig // Server rate limit; nil means no limiting
	RateLimiter   middleware.RateLimiter      // Rate limiting algorithm; defaults to middleware.NewUberRateLimiter()
	IPConfig      *middleware.IPConfig        // Configuration for client IP extraction
	BodyLimit     int64                       // Maximum JSON body size in bytes; defaults to bodyparser.DefaultLimit
	EnableTraceID bool                        // Assign X-Request-ID trace IDs and log them
	EnableMetrics bool                        // Enable Prometheus metrics collection
	Metrics       metrics.Config              // Prometheus collector configuration
	ErrorHandler  httperror.Handler           // Terminal error handler; defaults to httperror.NewHandler
	Middlewares   []common.Middleware         // Global middlewares applied to all routes after rate limiting
}

// HandlerFunc handles a request that passed every pipeline stage.
// A returned error is delivered to the terminal error handler: an
// *httperror.Error keeps its status, anything else becomes a 500.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Validate holds the validators of a route, one per request part.
// A nil validator means the part is not validated.
type Validate struct {
	Body   *validation.Validator
	Query  *validation.Validator
	Params *validation.Validator
}

// RouteOptions are the per-route settings. Absent values fall back to the
// plugin and then to the server.
type RouteOptions struct {
	CORS      resolve.Value[cors.Directive]
	Auth      resolve.Value[auth.Setting]
	Validate  Validate
	RateLimit resolve.Value[*middleware.RateLimitConfig]
}

// Route declares a plugin route.
type Route struct {
	Method  string      // HTTP method, case-insensitive
	Path    string      // Path relative to the server and plugin prefixes
	Handler HandlerFunc // Route handler
	Options RouteOptions
}

// PluginRoutes are the settings a plugin applies to all of its routes.
type PluginRoutes struct {
	Prefix    resolve.Value[string]
	CORS      resolve.Value[cors.Directive]
	Auth      resolve.Value[auth.Setting]
	RateLimit resolve.Value[*middleware.RateLimitConfig]
}

// PluginOptions are supplied once per plugin registration.
type PluginOptions struct {
	Routes PluginRoutes
}

// RoutingContext is the server-level state every registration reads:
// the server defaults and the shared auth registry.
type RoutingContext struct {
	Prefix    string
	CORS      cors.Directive
	Auth      auth.Setting
	RateLimit *middleware.RateLimitConfig

	registry *auth.Registry
}

// Registry returns the shared auth registry.
func (rc *RoutingContext) Registry() *auth.Registry {
	return rc.registry
}

// Plugin is a unit of routes and auth methods installed on a Router.
type Plugin interface {
	// Name identifies the plugin. It selects the plugin's options when the
	// router is built from a configuration file.
	Name() string

	// Register declares the plugin's auth methods and routes.
	Register(reg *Registrar) error
}
