package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRegistrar/pkg/auth"
	"github.com/Suhaibinator/SRegistrar/pkg/bodyparser"
	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/cors"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"github.com/Suhaibinator/SRegistrar/pkg/resolve"
	"github.com/Suhaibinator/SRegistrar/pkg/validation"
	"go.uber.org/zap"
)

// Pipeline stage names
const (
	StageBody = "body"
	StageCORS = "cors"
	StageAuth = "auth"
)

// validationStage returns the pipeline stage name of a validation stage.
func validationStage(s validation.Stage) string {
	return "validate." + string(s)
}

var methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

// Registrar declares the auth methods and routes of one plugin.
type Registrar struct {
	router  *Router
	options PluginOptions
	plugin  string
}

// stage is one named middleware of a route pipeline.
type stage struct {
	name       string
	middleware common.Middleware
}

// Auth registers an authentication method in the router's shared registry.
// A name can be registered once; a second registration fails with a
// BadImplementation error wrapping auth.ErrMethodExists.
func (reg *Registrar) Auth(method auth.Method) error {
	if err := reg.router.routing.registry.Register(method); err != nil {
		reg.router.logger.Error("Failed to register auth method",
			zap.String("plugin", reg.plugin),
			zap.String("name", method.Name),
			zap.Error(err),
		)
		return err
	}

	reg.router.metrics.AuthMethodRegistered()
	reg.router.logger.Info("Auth method registered",
		zap.String("plugin", reg.plugin),
		zap.String("name", method.Name),
	)
	return nil
}

// Route mounts a route. The full path is the server prefix, then the plugin
// prefix, then the route path. The request passes the server-level wrapper,
// the route pipeline (body, cors, auth, validate.body, validate.query,
// validate.params) and finally the handler.
//
// Configuration errors are returned as httperror.BadImplementation and leave
// the router unchanged.
func (reg *Registrar) Route(route Route) error {
	method := strings.ToUpper(strings.TrimSpace(route.Method))
	path := reg.path(route)

	if err := reg.check(method, route); err != nil {
		reg.router.logger.Error("Failed to register route",
			zap.String("plugin", reg.plugin),
			zap.String("method", route.Method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}

	stages, err := reg.pipeline(route, path)
	if err != nil {
		reg.router.logger.Error("Failed to register route",
			zap.String("plugin", reg.plugin),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}

	rateLimit := reg.router.effectiveRateLimit(route.Options.RateLimit, reg.options.Routes.RateLimit)

	chain := common.NewMiddlewareChain(reg.router.serverMiddlewares(method, path, rateLimit)...)
	names := make([]string, len(stages))
	for i, s := range stages {
		chain = chain.Append(s.middleware)
		names[i] = s.name
	}

	if err := reg.router.mount(method, path, chain.Then(terminal(route.Handler))); err != nil {
		reg.router.logger.Error("Failed to register route",
			zap.String("plugin", reg.plugin),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}

	reg.router.routes = append(reg.router.routes, RouteInfo{Method: method, Path: path, Stages: names})
	reg.router.metrics.RouteRegistered(method, names)
	reg.router.logger.Info("Route registered",
		zap.String("plugin", reg.plugin),
		zap.String("method", method),
		zap.String("path", path),
		zap.Strings("stages", names),
	)
	return nil
}

// path composes the full path of a route.
func (reg *Registrar) path(route Route) string {
	return reg.router.routing.Prefix + reg.options.Routes.Prefix.Or("") + route.Path
}

// check rejects route declarations that cannot be mounted.
func (reg *Registrar) check(method string, route Route) error {
	switch {
	case method == "":
		return httperror.BadImplementation(fmt.Errorf("%w: method is required", ErrInvalidRoute))
	case !methods[method]:
		return httperror.BadImplementation(fmt.Errorf("%w: unsupported method %q", ErrInvalidRoute, route.Method))
	case route.Handler == nil:
		return httperror.BadImplementation(fmt.Errorf("%w: handler is required", ErrInvalidRoute))
	}

	validators := map[validation.Stage]*validation.Validator{
		validation.Body:   route.Options.Validate.Body,
		validation.Query:  route.Options.Validate.Query,
		validation.Params: route.Options.Validate.Params,
	}
	for _, s := range validation.Stages {
		if !validation.Check(validators[s]) {
			return httperror.BadImplementation(fmt.Errorf("%w: %s validator has neither schema nor function", ErrInvalidRoute, s))
		}
	}
	return nil
}

// pipeline assembles the route middlewares in their fixed order and drops
// the stages that resolve to nil.
func (reg *Registrar) pipeline(route Route, path string) ([]stage, error) {
	rc := reg.router.routing
	plugin := reg.options.Routes

	corsDirective := resolve.First(route.Options.CORS, plugin.CORS).Or(rc.CORS)

	authSetting := resolve.First(route.Options.Auth, plugin.Auth).Or(rc.Auth)
	authenticate, err := auth.Resolve(rc.registry, authSetting)
	if err != nil {
		return nil, err
	}

	observe := func(s validation.Stage, r *http.Request, details []validation.Detail) {
		reg.router.metrics.ValidationFailed(validationStage(s), path)
	}

	candidates := []stage{
		{StageBody, bodyparser.JSON(bodyparser.WithLimit(reg.router.config.BodyLimit))},
		{StageCORS, cors.Middleware(corsDirective)},
		{StageAuth, authenticate},
		{validationStage(validation.Body), validation.Middleware(validation.Body, route.Options.Validate.Body, observe)},
		{validationStage(validation.Query), validation.Middleware(validation.Query, route.Options.Validate.Query, observe)},
		{validationStage(validation.Params), validation.Middleware(validation.Params, route.Options.Validate.Params, observe)},
	}

	stages := candidates[:0]
	for _, s := range candidates {
		if s.middleware != nil {
			stages = append(stages, s)
		}
	}
	return stages, nil
}
