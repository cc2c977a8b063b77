package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const bodyLocalsKey = "validated_body"

// Normalizer is implemented by request bodies that clean their input
// (trimming, for instance) before validation.
type Normalizer interface {
	Normalize()
}

// NewValidator returns a validator that reports fields by their JSON name
// and understands two extra tags. "filled" rejects a zero value behind a
// supplied pointer, which "required" lets through. "decimal" accepts a
// string holding a finite decimal number; hex and underscore forms are
// rejected.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
		return !fl.Field().IsZero()
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.ContainsAny(s, "xX_") {
			return false
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// ValidateBody parses the request body into a T, validates it and stores it
// for the next handler, which reads it back with Body. An empty body is
// validated as a zero T. Invalid input ends the request with 400 before the
// handler runs.
func ValidateBody[T any](validate *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(body); err != nil {
				return invalidBody(c, err)
			}
		}

		if n, ok := any(body).(Normalizer); ok {
			n.Normalize()
		}

		if err := validate.Struct(body); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Invalid request body",
					"error":   err.Error(),
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  ValidationMessages(validationErrors),
			})
		}

		c.Locals(bodyLocalsKey, body)
		return c.Next()
	}
}

// invalidBody reports a decode failure. A value of the wrong JSON type for a
// known field is reported like any other field failure.
func invalidBody(c *fiber.Ctx, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{typeErr.Field: typeMessage(typeErr.Field, typeErr.Type)},
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func typeMessage(field string, t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return fmt.Sprintf("The %s field is invalid.", field)
	}
	switch t.Kind() {
	case reflect.String:
		return fmt.Sprintf("The %s field must be a string.", field)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("The %s field must be a number.", field)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// Body returns the request body stored by ValidateBody, or nil.
func Body[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(bodyLocalsKey).(*T)
	return body
}

// ValidationMessages renders one readable message per failed field.
func ValidationMessages(validationErrors validator.ValidationErrors) map[string]string {
	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		if _, seen := messages[field]; seen {
			continue
		}
		messages[field] = message(field, e)
	}
	return messages
}

func message(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required", "filled":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, e.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, e.Param())
	case "decimal":
		return fmt.Sprintf("The %s field must be a number.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, e.Tag())
	}
}
