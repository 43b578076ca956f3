package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return !field.IsZero()
		}
		return strings.TrimSpace(field.String()) != ""
	})
	return v
}

// validateRequest returns the struct field name of the first failed rule.
func validateRequest(req any) (string, error) {
	err := validate.Struct(req)
	if err == nil {
		return "", nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].StructField(), fieldErrs[0]
	}
	return "", err
}

func isBlankFailure(err error) bool {
	var fieldErr validator.FieldError
	return errors.As(err, &fieldErr) && fieldErr.Tag() == "notblank"
}
