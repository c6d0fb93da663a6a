// Package validation builds the request-stage checks that run after
// authentication: one middleware each for the body, the query string and the
// route params.
package validation

// Result is the answer of a validator. It is either a Bool, the plain answer
// of a predicate, or an Outcome, the structured answer of a schema.
type Result interface {
	isResult()
}

// Bool is a predicate answer. Bool(false) carries no details.
type Bool bool

func (Bool) isResult() {}

// Outcome is a schema answer. A nil Error means the input is valid.
type Outcome struct {
	Error *Failure
}

func (Outcome) isResult() {}

// Failure describes why an input was rejected.
type Failure struct {
	Details []Detail `json:"details"`
}

// Detail is a single validation error.
type Detail struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Pass returns a valid Outcome.
func Pass() Outcome {
	return Outcome{}
}

// Fail returns an invalid Outcome carrying details.
func Fail(details ...Detail) Outcome {
	if details == nil {
		details = []Detail{}
	}
	return Outcome{Error: &Failure{Details: details}}
}

// IsValid reports whether r accepts the input: Bool(true), or an Outcome
// without an error. A nil Result is invalid.
func IsValid(r Result) bool {
	switch v := r.(type) {
	case Bool:
		return bool(v)
	case Outcome:
		return v.Error == nil
	case *Outcome:
		return v != nil && v.Error == nil
	default:
		return false
	}
}

// Details returns the details of an invalid result, never nil.
func Details(r Result) []Detail {
	var failure *Failure
	switch v := r.(type) {
	case Outcome:
		failure = v.Error
	case *Outcome:
		if v != nil {
			failure = v.Error
		}
	}
	if failure == nil || failure.Details == nil {
		return []Detail{}
	}
	return failure.Details
}
