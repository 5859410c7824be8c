package core

// validation.go checks a lead before it is persisted.
//
// Rules live in struct tags on Lead and are enforced by validator/v10.
// Category fields use custom tags (status, priority, propertytype,
// propertycondition) so the closed sets are defined once, in enums.go.
// Failures are reported as a *ValidationError listing every bad field by its
// JSON name.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string]func(string) bool{
		"status":            func(s string) bool { return Status(s).Valid() },
		"priority":          func(s string) bool { return Priority(s).Valid() },
		"propertytype":      func(s string) bool { return PropertyType(s).Valid() },
		"propertycondition": func(s string) bool { return PropertyCondition(s).Valid() },
	}
	for tag, ok := range enums {
		ok := ok
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// ValidateLead returns nil when l satisfies the lead rules, or a
// *ValidationError naming each failing field.
func ValidateLead(l *Lead) error {
	err := validate.Struct(l)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate lead: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "gte":
		return "invalid number: must not be negative"
	case "status", "priority", "propertytype", "propertycondition":
		return fmt.Sprintf("invalid enum value %q", fe.Value())
	default:
		return "failed " + fe.Tag() + " check"
	}
}
