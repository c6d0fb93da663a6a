package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/bodyparser"
	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/config"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"github.com/Suhaibinator/SRegistrar/pkg/metrics"
	"github.com/Suhaibinator/SRegistrar/pkg/middleware"
	"github.com/Suhaibinator/SRegistrar/pkg/resolve"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ErrInvalidRoute is wrapped by the BadImplementation errors Route returns for
// malformed route declarations.
var ErrInvalidRoute = errors.New("invalid route")

// Router is the main router struct that implements http.Handler.
//
// Routes and auth methods are registered through Registrars obtained with
// Plugin. Registration is not synchronized: register everything before the
// router starts serving requests.
type Router struct {
	config        Config
	router        *httprouter.Router
	logger        *zap.Logger
	routing       *RoutingContext
	rateLimiter   middleware.RateLimiter
	metrics       *metrics.Collector
	errorHandler  httperror.Handler
	pluginOptions map[string]PluginOptions
	routes        []RouteInfo
}

// RouteInfo describes a mounted route.
type RouteInfo struct {
	Method string
	Path   string
	Stages []string // Names of the pipeline stages, in order
}

// New creates a new Router with the given configuration.
// It fails only when the metrics collectors cannot be registered.
func New(config Config) (*Router, error) {
	// Set up the logger
	logger := config.Logger
	if logger == nil {
		// Create a default logger if none is provided
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			// Fallback to a no-op logger if we can't create a production logger
			logger = zap.NewNop()
		}
	}

	if config.BodyLimit <= 0 {
		config.BodyLimit = bodyparser.DefaultLimit
	}

	rateLimiter := config.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewUberRateLimiter()
	}

	var collector *metrics.Collector
	if config.EnableMetrics {
		var err error
		collector, err = metrics.New(config.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	errorHandler := config.ErrorHandler
	if errorHandler == nil {
		var traceID func(*http.Request) string
		if config.EnableTraceID {
			traceID = middleware.GetTraceID
		}
		errorHandler = httperror.NewHandler(logger, traceID)
	}

	r := &Router{
		config: config,
		router: httprouter.New(),
		logger: logger,
		routing: &RoutingContext{
			Prefix:    config.Prefix,
			CORS:      config.CORS,
			Auth:      config.Auth,
			RateLimit: config.RateLimit,
			registry:  auth.NewRegistry(),
		},
		rateLimiter:   rateLimiter,
		metrics:       collector,
		errorHandler:  errorHandler,
		pluginOptions: make(map[string]PluginOptions),
	}

	r.router.NotFound = r.fallback(http.StatusNotFound)
	r.router.MethodNotAllowed = r.fallback(http.StatusMethodNotAllowed)

	return r, nil
}

// NewFromConfig creates a Router from a loaded configuration file.
// Plugin options are taken from file.Plugins when plugins are installed.
// A nil logger is built from the file's log settings.
func NewFromConfig(file *config.File, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		var err error
		logger, err = file.Server.Log.NewLogger()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	r, err := New(Config{
		Logger:        logger,
		Prefix:        file.Server.Prefix,
		CORS:          file.Server.CORS,
		Auth:          file.Server.Auth,
		RateLimit:     file.Server.RateLimit,
		IPConfig:      file.Server.IP,
		BodyLimit:     file.Server.BodyLimit,
		EnableTraceID: file.Server.TraceID,
		EnableMetrics: file.Server.Metrics.Enabled,
		Metrics:       metrics.Config{Namespace: file.Server.Metrics.Namespace},
	})
	if err != nil {
		return nil, err
	}

	for name, p := range file.Plugins {
		r.pluginOptions[name] = PluginOptions{
			Routes: PluginRoutes{
				Prefix:    p.Prefix,
				CORS:      p.CORS,
				Auth:      p.Auth,
				RateLimit: p.RateLimit,
			},
		}
	}

	return r, nil
}

// Context returns the server routing context.
func (r *Router) Context() *RoutingContext {
	return r.routing
}

// Plugin returns the registrar a plugin uses to declare its auth methods and
// routes with the given options.
func (r *Router) Plugin(opts PluginOptions) *Registrar {
	return &Registrar{router: r, options: opts}
}

// Install registers plugins in order. Each plugin receives the options
// configured under its name, if any. Installation stops at the first error.
func (r *Router) Install(plugins ...Plugin) error {
	for _, p := range plugins {
		name := p.Name()
		reg := r.Plugin(r.pluginOptions[name])
		reg.plugin = name

		if err := p.Register(reg); err != nil {
			r.logger.Error("Failed to install plugin",
				zap.String("plugin", name),
				zap.Error(err),
			)
			return fmt.Errorf("plugin %q: %w", name, err)
		}

		r.logger.Info("Plugin installed", zap.String("plugin", name))
	}
	return nil
}

// Routes returns the mounted routes in registration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, len(r.routes))
	for i, info := range r.routes {
		info.Stages = append([]string(nil), info.Stages...)
		out[i] = info
	}
	return out
}

// MetricsHandler serves the router's Prometheus metrics.
// It responds 404 when metrics are disabled.
func (r *Router) MetricsHandler() http.Handler {
	return r.metrics.Handler()
}

// ServeHTTP implements the http.Handler interface.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// fallback answers requests that match no route with status, through the
// terminal error handler.
func (r *Router) fallback(status int) http.Handler {
	return common.NewMiddlewareChain(r.trace()).ThenFunc(func(w http.ResponseWriter, req *http.Request) {
		r.errorHandler(w, req, httperror.New(status, ""))
	})
}

// trace returns the trace ID middleware, or nil when trace IDs are disabled.
func (r *Router) trace() common.Middleware {
	if r.config.EnableTraceID {
		return middleware.TraceMiddleware()
	}
	return nil
}

// serverMiddlewares returns the server-level wrapper of a route, outermost
// first: error boundary, trace ID, recovery, client IP, access log, request
// metrics, rate limit and the configured global middlewares.
// Recovery runs inside the trace middleware so panics keep their trace ID.
func (r *Router) serverMiddlewares(method, path string, rateLimit *middleware.RateLimitConfig) []common.Middleware {
	mws := []common.Middleware{
		httperror.Boundary(r.errorHandler),
		r.trace(),
		middleware.Recovery(r.logger),
		middleware.ClientIPMiddleware(r.config.IPConfig),
		middleware.Logging(r.logger),
		r.metrics.Middleware(method, path),
		middleware.RateLimit(rateLimit, r.rateLimiter, r.logger),
	}
	return append(mws, r.config.Middlewares...)
}

// effectiveRateLimit resolves a route's rate limit: route, then plugin,
// then server.
func (r *Router) effectiveRateLimit(route, plugin resolve.Value[*middleware.RateLimitConfig]) *middleware.RateLimitConfig {
	return resolve.First(route, plugin).Or(r.routing.RateLimit)
}

// mount attaches handler to method and path. httprouter panics on malformed
// or conflicting paths; the panic is returned as a BadImplementation error.
func (r *Router) mount(method, path string, handler http.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = httperror.BadImplementation(fmt.Errorf("%w: %s %s: %v", ErrInvalidRoute, method, path, rec))
		}
	}()

	r.router.Handle(method, path, func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		// Store the params in the request context
		ctx := context.WithValue(req.Context(), httprouter.ParamsKey, ps)
		handler.ServeHTTP(w, req.WithContext(ctx))
	})
	return nil
}

// terminal adapts a route handler, delivering its error to the terminal
// error handler.
func terminal(handler HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := handler(w, req); err != nil {
			httperror.Fail(w, req, err)
		}
	})
}

// GetParams retrieves the httprouter.Params from the request context.
func GetParams(r *http.Request) httprouter.Params {
	return httprouter.ParamsFromContext(r.Context())
}

// GetParam retrieves a specific parameter from the request context.
func GetParam(r *http.Request, name string) string {
	return GetParams(r).ByName(name)
}
