package validation

import (
	"testing"
)

const itemSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"count": {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func TestJSONSchemaValid(t *testing.T) {
	s := MustCompileJSONSchema("item.json", itemSchema)

	out := s.Validate(map[string]any{"name": "widget", "count": float64(3)})
	if !IsValid(out) {
		t.Errorf("Expected valid input, got %v", Details(out))
	}
}

func TestJSONSchemaInvalid(t *testing.T) {
	s := MustCompileJSONSchema("", itemSchema)

	out := s.Validate(map[string]any{"count": float64(-1)})
	if IsValid(out) {
		t.Fatalf("Expected invalid input")
	}

	details := Details(out)
	if len(details) < 2 {
		t.Fatalf("Expected at least two details, got %v", details)
	}

	seen := map[string]bool{}
	for _, d := range details {
		seen[d.Type] = true
		if d.Message == "" {
			t.Errorf("Expected a message for %+v", d)
		}
	}
	if !seen["schema.required"] || !seen["schema.minimum"] {
		t.Errorf("Expected required and minimum failures, got %v", details)
	}
}

func TestCompileJSONSchemaError(t *testing.T) {
	if _, err := CompileJSONSchema("", "{not json"); err == nil {
		t.Errorf("Expected an error for malformed schema JSON")
	}
}

type createItem struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestStructSchema(t *testing.T) {
	s := Struct[createItem]()

	if out := s.Validate(map[string]any{"name": "widget", "count": 1}); !IsValid(out) {
		t.Errorf("Expected valid input, got %v", Details(out))
	}

	out := s.Validate(map[string]any{"count": -2})
	if IsValid(out) {
		t.Fatalf("Expected invalid input")
	}

	details := Details(out)
	paths := map[string]string{}
	for _, d := range details {
		paths[d.Path] = d.Type
	}
	if paths["name"] != "struct.required" {
		t.Errorf("Expected name to fail required, got %v", details)
	}
	if paths["count"] != "struct.gte" {
		t.Errorf("Expected count to fail gte, got %v", details)
	}
}

func TestStructSchemaDecodeError(t *testing.T) {
	out := Struct[createItem]().Validate(map[string]any{"count": "many"})
	if IsValid(out) {
		t.Errorf("Expected a decode failure to be invalid")
	}
}
