package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/fern/pkg/dateformat"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// dateformat accepts any pattern built from the supported tokens
	_ = v.RegisterValidation("dateformat", func(fl validator.FieldLevel) bool {
		_, err := dateformat.Layout(fl.Field().String())
		return err == nil
	})
	// outputdateformat only accepts the selectable vocabulary
	_ = v.RegisterValidation("outputdateformat", func(fl validator.FieldLevel) bool {
		return dateformat.IsSupported(fl.Field().String())
	})
	return v
}

func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, ValidationErrorToString(value, err)
	}

	return value, nil
}

func ValidateValue(value any, tag string) error {
	err := validate.Var(value, tag)
	if err != nil {
		return ValidationErrorToString(value, err)
	}
	return nil
}

func ValidationErrorToString(input any, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg := ""
		for _, fe := range verrs {
			msg += fmt.Sprintf("\n • Failed %T validation for field '%s': rule '%s' expected '%s', got '%v'.", input, fe.StructField(), fe.Tag(), fe.Param(), fe.Value())
		}
		return errors.New(msg)
	}

	return err
}
