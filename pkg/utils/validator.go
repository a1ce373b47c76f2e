package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
)

// defaultValidator holds the singleton instance of the validator.
var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	defaultValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = defaultValidator.RegisterValidation("uuid", validateUUID)
}

// Validator exposes the shared validator for packages that register their own rules.
func Validator() *validator.Validate {
	return defaultValidator
}

// ValidateStruct validates a struct using the default validator.
// It returns a *errors.ValidationError listing every failed field, or nil.
func ValidateStruct(s interface{}) error {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Invalid("request", err.Error())
	}
	return ToValidationError(validationErrors)
}

// ToValidationError converts validator field errors into the service's ValidationError.
func ToValidationError(ves validator.ValidationErrors) *errors.ValidationError {
	violations := make([]errors.FieldViolation, 0, len(ves))
	for _, fe := range ves {
		violations = append(violations, errors.FieldViolation{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return errors.NewValidationError(violations...)
}

// validateUUID is a custom validation function for UUIDs.
func validateUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "ltefield":
		return fmt.Sprintf("must be less than or equal to %s", ToSnakeCase(fe.Param()))
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", ToSnakeCase(fe.Param()))
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
