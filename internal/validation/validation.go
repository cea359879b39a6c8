// Package validation checks form payloads against their `validate` struct
// tags and turns failures into messages fit for a notice.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates v. The returned error, if any, reads as a user message.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "invalid validation input")
	}
	return &Error{Fields: fieldErrs}
}

// Error lists the fields that failed validation. Problems holds checks
// that no struct tag can express.
type Error struct {
	Fields   validator.ValidationErrors
	Problems []string
}

// Fail builds an Error from plain messages. It returns nil when there are
// none, so callers can collect problems and return Fail(problems...).
func Fail(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{Problems: problems}
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields)+len(e.Problems))
	for _, fe := range e.Fields {
		msgs = append(msgs, fieldMessage(fe))
	}
	msgs = append(msgs, e.Problems...)
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #1a2b3c", field)
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
