// Package validation wraps go-playground/validator and converts its errors
// into domain validation errors.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

// Messages shown to users for link field failures.
const (
	MsgRequired   = "Title and URL are required"
	MsgInvalidURL = "Invalid URL"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports JSON field names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error with
// per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateLink checks the fields of a link after normalization. A missing
// title or url wins over a malformed url.
func (v *Validator) ValidateLink(f domain.LinkFields) error {
	err := v.v.Struct(f.Normalize())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msg := MsgInvalidURL
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			msg = MsgRequired
			break
		}
	}
	return domain.Validation(msg).WithDetails(fieldDetails(fieldErrs))
}

func (v *Validator) formatError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return domain.Validation("validation failed").WithDetails(fieldDetails(fieldErrs))
}

func fieldDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field()] = friendlyMessage(e)
	}
	return details
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return "must not exceed " + e.Param() + " characters"
	default:
		return "is invalid"
	}
}
