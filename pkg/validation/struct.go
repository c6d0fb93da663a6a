package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// StructSchema validates inputs by decoding them into a T and checking T's
// `validate` struct tags.
type StructSchema[T any] struct{}

// Struct returns a schema backed by the `validate` tags of T.
func Struct[T any]() *StructSchema[T] {
	return &StructSchema[T]{}
}

// Validate implements Schema.
func (s *StructSchema[T]) Validate(input any) Outcome {
	raw, err := sonic.ConfigStd.Marshal(input)
	if err != nil {
		return Fail(Detail{Message: err.Error(), Type: "decode"})
	}

	var data T
	if err := sonic.ConfigStd.Unmarshal(raw, &data); err != nil {
		return Fail(Detail{Message: err.Error(), Type: "decode"})
	}

	err = structValidator.Struct(data)
	if err == nil {
		return Pass()
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Fail(Detail{Message: err.Error(), Type: "struct"})
	}

	details := make([]Detail, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		details = append(details, Detail{
			Message: fe.Error(),
			Path:    path,
			Type:    "struct." + fe.Tag(),
		})
	}
	return Fail(details...)
}
