package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

// RegisterStringEnum adds a tag to gin's validator that accepts string-kinded
// fields for which valid returns true.
func RegisterStringEnum(tag string, valid func(string) bool) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterStringEnumOn(v, tag, valid)
}

func RegisterStringEnumOn(v *validator.Validate, tag string, valid func(string) bool) error {
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return valid(field.String())
	})
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "mediatype":
		return fmt.Sprintf("%s must be SHOW or MOVIE", field)
	case "status":
		return fmt.Sprintf("%s must be WATCHING, PLAN_TO_WATCH or COMPLETED", field)
	case "messagemediatype":
		return fmt.Sprintf("%s must be SHOW, MOVIE or PERSON", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "required_with":
		return fmt.Sprintf("%s is required together with %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"MediaID":            "Media id",
		"MediaType":          "Media type",
		"Status":             "Status",
		"To":                 "Recipient",
		"Content":            "Content",
		"SpoilerMedia":       "Spoiler media",
		"SpoilerDescription": "Spoiler description",
		"Username":           "Username",
		"Email":              "Email",
		"Password":           "Password",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
