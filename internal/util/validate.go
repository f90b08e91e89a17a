package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/ferdian3456/snapgram/internal/constant"
	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// ValidateStruct checks payload against its validate tags and reports the
// first violation as a ValidationError whose Param is the JSON field name.
func ValidateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	fieldErr := validationErrors[0]

	return &model.ValidationError{
		Code:    constant.ERR_VALIDATION_CODE,
		Message: validationMessage(fieldErr),
		Param:   fieldErr.Field(),
	}
}

func validationMessage(fieldErr validator.FieldError) string {
	label := displayName(fieldErr.Field())

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required to not be empty", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func displayName(field string) string {
	if field == "" {
		return field
	}

	runes := []rune(field)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
