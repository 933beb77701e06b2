// Package validation wraps go-playground/validator for forms and JSON
// payloads, reporting failures per field with readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// CategoryMessage is reported for any category outside entities.BookCategories.
const CategoryMessage = "Invalid category. Valid Categories are `story`, `educational`, `historical`."

// Errors maps a field name to its first failure message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Validator wraps go-playground/validator with field error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog's custom rules registered.
func New() *Validator {
	v := validator.New()

	// Report json names for API payloads and form names for HTML forms
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "book_category", func(fl validator.FieldLevel) bool {
		return entities.BookCategory(fl.Field().String()).Valid()
	})
	mustRegister(v, "user_type", func(fl validator.FieldLevel) bool {
		return entities.UserType(fl.Field().String()).Valid()
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && strings.Trim(s, "0123456789") == ""
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Validate validates a struct and returns Errors for rule failures.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag, reporting it under field.
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return Errors{field: v.friendlyMessage(validationErrs[0])}
		}
		return err
	}
	return nil
}

// formatError converts validator errors to field errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(Errors)
	for _, e := range validationErrs {
		if _, seen := fieldErrors[e.Field()]; !seen {
			fieldErrors[e.Field()] = v.friendlyMessage(e)
		}
	}
	return fieldErrors
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "digits":
		return "Enter a whole number."
	case "book_category":
		return CategoryMessage
	case "user_type":
		return fmt.Sprintf("%q is not a valid choice.", e.Value())
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "This value is invalid."
	}
}
