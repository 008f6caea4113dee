// Package validation checks request objects against the constraints declared in their
// `validate` struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("validation failed")

// FieldError identifies the first constraint a request object violated.
type FieldError struct {
	Field string // JSON name of the offending field
	Rule  string // violated tag, e.g. "required" or "email"
	Param string // tag parameter, e.g. "40" for max=40
}

func (e *FieldError) Error() string {
	switch e.Rule {
	case "required", "notblank":
		return fmt.Sprintf("%s can't be blank", e.Field)
	case "email":
		return fmt.Sprintf("%s should be a valid email", e.Field)
	case "max":
		return fmt.Sprintf("%s can't be longer than %s characters", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s failed the '%s' rule", e.Field, e.Rule)
	}
}

// Unwrap makes errors.Is(err, ErrInvalid) hold for every FieldError.
func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// required only rejects the zero value, so "   " would pass as a name.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the struct pointed to by request and returns a *FieldError describing the first
// violated constraint, or nil if the request is valid.
func Validate(request any) error {
	err := validate.Struct(request)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return &FieldError{Field: first.Field(), Rule: first.Tag(), Param: first.Param()}
	}
	// InvalidValidationError: nil or non-struct argument.
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
