package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator that reports json field names and compares
// decimals numerically.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return validate
}

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("Invalid request body", map[string]string{"body": err.Error()})
	}
	return check(validate, dst)
}

func check(validate *validator.Validate, dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(apperrors.CodeInternal, err, "validation failed")
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.SplitN(e.Namespace(), ".", 2)
		name := e.Field()
		if len(field) == 2 {
			name = field[1]
		}
		errorMessages[name] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperrors.Validation("Validation failed", errorMessages)
}
