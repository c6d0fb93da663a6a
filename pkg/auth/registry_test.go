package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Suhaibinator/SRegistrar/pkg/common"
	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"gopkg.in/yaml.v3"
)

func passThrough(next http.Handler) http.Handler { return next }

// TestRegistryWriteOnce tests that a name can only be registered once
func TestRegistryWriteOnce(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Method{Name: "token", Authenticate: passThrough}); err != nil {
		t.Fatalf("Expected first registration to succeed, got %v", err)
	}

	// A different function under the same name is still rejected
	other := common.Middleware(func(next http.Handler) http.Handler { return next })
	err := reg.Register(Method{Name: "token", Authenticate: other})
	if err == nil {
		t.Fatalf("Expected duplicate registration to fail")
	}
	if !errors.Is(err, ErrMethodExists) {
		t.Errorf("Expected ErrMethodExists, got %v", err)
	}
	if !httperror.IsBadImplementation(err) {
		t.Errorf("Expected a bad implementation error, got %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 registered method, got %d", reg.Len())
	}
}

func TestRegistryInsert(t *testing.T) {
	reg := NewRegistry()

	if !reg.Insert("a", passThrough) {
		t.Errorf("Expected insert of new name to succeed")
	}
	if reg.Insert("a", passThrough) {
		t.Errorf("Expected insert of existing name to report a conflict")
	}
	reg.Insert("b", passThrough)

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Expected sorted names [a b], got %v", names)
	}
}

func TestRegisterRejectsInvalidMethod(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Method{Name: "", Authenticate: passThrough}); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Expected ErrInvalidMethod for empty name, got %v", err)
	}
	if err := reg.Register(Method{Name: "x"}); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Expected ErrInvalidMethod for nil authenticate, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Insert("token", passThrough)

	// Off yields no middleware and no error
	m, err := Resolve(reg, Off())
	if err != nil || m != nil {
		t.Errorf("Expected nil middleware and nil error for Off, got %v, %v", m, err)
	}

	m, err = Resolve(reg, Use("token"))
	if err != nil || m == nil {
		t.Errorf("Expected registered middleware, got %v, %v", m, err)
	}

	_, err = Resolve(reg, Use("session"))
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
	if !httperror.IsBadImplementation(err) {
		t.Errorf("Expected a bad implementation error, got %v", err)
	}
}

func TestSettingYAML(t *testing.T) {
	var doc struct {
		A Setting `yaml:"a"`
		B Setting `yaml:"b"`
		C Setting `yaml:"c"`
	}
	if err := yaml.Unmarshal([]byte("a: token\nb: false\nc: \"false\"\n"), &doc); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if doc.A.IsOff() || doc.A.Method() != "token" {
		t.Errorf("Expected a to use token, got %s", doc.A)
	}
	if !doc.B.IsOff() {
		t.Errorf("Expected b to be off, got %s", doc.B)
	}
	if doc.C.IsOff() || doc.C.Method() != "false" {
		t.Errorf("Expected quoted false to be a method name, got %s", doc.C)
	}

	var bad struct {
		A Setting `yaml:"a"`
	}
	if err := yaml.Unmarshal([]byte("a: true"), &bad); err == nil {
		t.Errorf("Expected an error for true")
	}
}
