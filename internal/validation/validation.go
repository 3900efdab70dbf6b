package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report errors against the json field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// Struct validates a request struct against its `validate` tags and returns
// a 400 fiber error describing the first failing field, or nil.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, message(verrs[0]))
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The field '%s' is required", e.Field())
	case "email":
		return fmt.Sprintf("The field '%s' must be a valid email address", e.Field())
	case "min":
		return fmt.Sprintf("The field '%s' must be at least %s characters long", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("The field '%s' must be no longer than %s characters", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("The field '%s' must be one of: %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("The field '%s' is invalid", e.Field())
	}
}
