// Package validate checks request shapes before they reach the auth engine.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lborres/pinto/core"
)

const passwordSpecials = "@$!%*?&"

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("password", strongPassword)

	return &Validator{v: v}
}

// Validate satisfies fiber's StructValidator. Failures are *core.ValidationError
// describing the first violated rule.
func (v *Validator) Validate(out any) error {
	err := v.v.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return core.NewValidationError(fe.Field(), "Validation error: "+describe(fe))
	}
	return core.NewValidationError("", "Validation error: "+err.Error())
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "password":
		return passwordProblem(fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func strongPassword(fl validator.FieldLevel) bool {
	return passwordProblem(fl.Field().String()) == ""
}

// passwordProblem returns the first unmet strength rule, or "" when none.
func passwordProblem(p string) string {
	switch {
	case len(p) < 8:
		return "Password must be at least 8 characters"
	case len(p) > 72:
		return "Password must be at most 72 bytes"
	case !strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return "Password must contain at least one uppercase letter"
	case !strings.ContainsAny(p, "abcdefghijklmnopqrstuvwxyz"):
		return "Password must contain at least one lowercase letter"
	case !strings.ContainsAny(p, "0123456789"):
		return "Password must contain at least one number"
	case !strings.ContainsAny(p, passwordSpecials):
		return "Password must contain at least one special character"
	}
	return ""
}
