// Package validation checks request structs with go-playground/validator and
// converts failures into field-level validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// max counts runes; maxbytes bounds the encoded size.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate validates a struct. Failures come back as a BAD_USER_INPUT error
// whose details map each offending field path to a message.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = friendlyMessage(fe)
	}

	// Lead with the first field, in a stable order.
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	msg := fmt.Sprintf("%s %s", fields[0], details[fields[0]])
	return domainerrors.ValidationWithDetails(msg, details)
}

// fieldPath drops the struct name from the namespace,
// e.g. "AddUserRequest.savedBooks[0].bookId" becomes "savedBooks[0].bookId".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must not exceed %s bytes", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
