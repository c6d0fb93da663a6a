package validation

import (
	"net/http"

	"github.com/Suhaibinator/SRegistrar/pkg/bodyparser"
	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"github.com/julienschmidt/httprouter"
)

// Stage names the part of the request a validator inspects.
type Stage string

const (
	Body   Stage = "body"
	Query  Stage = "query"
	Params Stage = "params"
)

// Stages lists the stages in the order their middlewares run.
var Stages = []Stage{Body, Query, Params}

// Input extracts the value the stage validates from the request.
func (s Stage) Input(r *http.Request) any {
	switch s {
	case Body:
		return bodyparser.Body(r)
	case Query:
		return queryInput(r)
	case Params:
		return paramsInput(r)
	default:
		return nil
	}
}

// Observer is notified of every validation failure. It may be nil.
type Observer func(stage Stage, r *http.Request, details []Detail)

// Middleware returns the validation middleware for stage.
// A nil validator yields a nil middleware: the route gets no stage at all.
// A failing input terminates the request with httperror.BadRequest carrying
// the validator's details; later stages do not run.
func Middleware(stage Stage, v *Validator, observe Observer) common.Middleware {
	if v == nil {
		return nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := v.Validate(stage.Input(r))
			if IsValid(result) {
				next.ServeHTTP(w, r)
				return
			}

			details := Details(result)
			if observe != nil {
				observe(stage, r, details)
			}
			httperror.Fail(w, r, httperror.BadRequest(details))
		})
	}
}

// Check reports whether v is usable. The registrar rejects routes that carry
// an unusable validator.
func Check(v *Validator) bool {
	return v == nil || v.usable()
}

// queryInput returns the query string as an object: a single value as a
// string and a repeated key as an array of strings.
func queryInput(r *http.Request) map[string]any {
	values := r.URL.Query()
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
			continue
		}
		arr := make([]any, len(vals))
		for i, v := range vals {
			arr[i] = v
		}
		out[key] = arr
	}
	return out
}

// paramsInput returns the route params as an object.
func paramsInput(r *http.Request) map[string]any {
	params := httprouter.ParamsFromContext(r.Context())
	out := make(map[string]any, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out
}
