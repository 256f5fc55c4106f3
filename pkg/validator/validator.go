package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	dniPattern       = regexp.MustCompile(`^\d{7,10}$`)
	phoneCharPattern = regexp.MustCompile(`^[0-9()+\- ]*$`)
	digitPattern     = regexp.MustCompile(`\d`)
)

func init() {
	// National identity number: 7 to 10 digits, nothing else.
	_ = validate.RegisterValidation("dni", func(fl validator.FieldLevel) bool {
		return dniPattern.MatchString(fl.Field().String())
	})
	// Phone numbers: digits plus separators, at least 6 digits, at most 40 chars.
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if len(v) > 40 || !phoneCharPattern.MatchString(v) {
			return false
		}
		return len(digitPattern.FindAllString(v, -1)) >= 6
	})
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", err.Field(), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	return fields
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dni":
		return "must be 7 to 10 digits"
	case "phone":
		return "must contain at least 6 digits and only numbers, spaces, +, - and ()"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
