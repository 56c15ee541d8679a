// Package validation wraps go-playground/validator with JSON field names and
// conversion to domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "foodgram/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type bounds struct {
	min, max int64
}

// Validator wraps go-playground/validator.
type Validator struct {
	v      *validator.Validate
	ranges map[string]bounds
}

// Option customises a Validator.
type Option func(*Validator)

// WithRange registers tag as an inclusive integer range check.
func WithRange(tag string, min, max int) Option {
	return func(v *Validator) {
		v.ranges[tag] = bounds{min: int64(min), max: int64(max)}
	}
}

// New creates a validator. The "username" tag is always available.
func New(opts ...Option) *Validator {
	v := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), ranges: map[string]bounds{}}
	for _, opt := range opts {
		opt(v)
	}

	v.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	_ = v.v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	for tag, b := range v.ranges {
		b := b
		_ = v.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			var value int64
			field := fl.Field()
			switch field.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				value = field.Int()
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				value = int64(field.Uint())
			default:
				return false
			}
			return value >= b.min && value <= b.max
		})
	}

	return v
}

// Validate validates a struct and returns a VALIDATION domain error listing
// every failing field.
func (v *Validator) Validate(s any) error {
	fields, err := v.Fields(s)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return domainerrors.Validation("validation failed", fields)
	}
	return nil
}

// Fields validates s and returns failing field paths mapped to messages.
// The map is nil when s is valid. A non-nil error means s could not be validated at all.
func (v *Validator) Fields(s any) (map[string]string, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[fieldPath(e)] = v.friendlyMessage(e)
	}
	return fields, nil
}

// fieldPath drops the root struct name from the namespace, leaving
// paths such as "ingredients[1].amount".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	if b, ok := v.ranges[e.Tag()]; ok {
		return fmt.Sprintf("must be between %d and %d", b.min, b.max)
	}

	isList := e.Kind() == reflect.Slice || e.Kind() == reflect.Array
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	case "unique":
		return "must not contain duplicates"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s item(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s item(s)", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "hexcolor":
		return "must be a hex color"
	case "nefield":
		return "must differ from " + e.Param()
	default:
		return "is invalid"
	}
}
