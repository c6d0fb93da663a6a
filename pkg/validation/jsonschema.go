package validation

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// JSONSchema validates inputs against a compiled JSON Schema document.
type JSONSchema struct {
	schema *jsonschema.Schema
}

// CompileJSONSchema compiles a JSON Schema document. id names the schema
// resource and may be empty.
func CompileJSONSchema(id, document string) (*JSONSchema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()

	var doc any
	if err := sonic.ConfigStd.UnmarshalFromString(document, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	if id == "" {
		id = "schema.json"
	}
	if err := compiler.AddResource(id, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &JSONSchema{schema: schema}, nil
}

// MustCompileJSONSchema is like CompileJSONSchema but panics on error.
// It is meant for package-level schema variables.
func MustCompileJSONSchema(id, document string) *JSONSchema {
	s, err := CompileJSONSchema(id, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements Schema.
func (s *JSONSchema) Validate(input any) Outcome {
	err := s.schema.Validate(input)
	if err == nil {
		return Pass()
	}

	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return Fail(Detail{Message: err.Error(), Type: "schema"})
	}

	var details []Detail
	collectSchemaErrors(verr, &details)
	return Fail(details...)
}

// collectSchemaErrors flattens the leaves of the error tree into details.
func collectSchemaErrors(verr *jsonschema.ValidationError, details *[]Detail) {
	if len(verr.Causes) == 0 {
		kind := ""
		if path := verr.ErrorKind.KeywordPath(); len(path) > 0 {
			kind = path[len(path)-1]
		}
		*details = append(*details, Detail{
			Message: verr.ErrorKind.LocalizedString(printer),
			Path:    strings.Join(verr.InstanceLocation, "."),
			Type:    "schema." + kind,
		})
		return
	}

	for _, cause := range verr.Causes {
		collectSchemaErrors(cause, details)
	}
}
