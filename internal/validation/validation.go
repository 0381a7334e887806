// Package validation wraps go-playground/validator so both the echo
// binding layer and the services report input problems the same way.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is the sentinel every validation failure unwraps to.
var ErrInvalid = errors.New("validation error")

// Error lists the offending fields in json-tag form.
type Error struct {
	Fields []FieldError
}

// FieldError names one failed rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return "invalid " + strings.Join(parts, ", ")
}

func (e *Error) Unwrap() error { return ErrInvalid }

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields by their json tag and trims
// strings before the "notblank" rule.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{v: v}
}

// Validate checks i against its `validate` tags.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// Invalid builds an *Error for a single field outside of struct tags.
func Invalid(field, rule string) error {
	return &Error{Fields: []FieldError{{Field: field, Rule: rule}}}
}
