package validation

// Schema is a schema-validation collaborator. It checks an input value and
// reports the outcome in the schema-library style.
type Schema interface {
	Validate(input any) Outcome
}

// PredicateFunc is a plain validation function.
type PredicateFunc func(input any) Result

type validatorKind int

const (
	schemaKind validatorKind = iota + 1
	predicateKind
)

// Validator is a per-stage validator. It is exactly one of a Schema or a
// predicate, fixed when the validator is built.
type Validator struct {
	kind      validatorKind
	schema    Schema
	predicate PredicateFunc
}

// FromSchema returns a validator that delegates to schema.
func FromSchema(schema Schema) *Validator {
	return &Validator{kind: schemaKind, schema: schema}
}

// FromPredicate returns a validator that calls fn.
func FromPredicate(fn PredicateFunc) *Validator {
	return &Validator{kind: predicateKind, predicate: fn}
}

// Kind returns "schema" or "predicate".
func (v *Validator) Kind() string {
	switch v.kind {
	case schemaKind:
		return "schema"
	case predicateKind:
		return "predicate"
	default:
		return "invalid"
	}
}

// Validate checks input. An unusable validator (nil schema or function)
// rejects every input.
func (v *Validator) Validate(input any) Result {
	switch {
	case v.kind == schemaKind && v.schema != nil:
		return v.schema.Validate(input)
	case v.kind == predicateKind && v.predicate != nil:
		return v.predicate(input)
	default:
		return Fail(Detail{Message: "validator is not configured", Type: "validator.invalid"})
	}
}

func (v *Validator) usable() bool {
	return (v.kind == schemaKind && v.schema != nil) || (v.kind == predicateKind && v.predicate != nil)
}
