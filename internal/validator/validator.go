// Package validator wraps go-playground/validator with JSON field names and
// the custom rules used by request payloads.
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// emailPattern is the accepted address shape: local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// Missing returns the fields that failed the required rule.
func (v ValidationErrors) Missing() []string {
	var out []string
	for _, e := range v {
		if e.Tag == "required" {
			out = append(out, e.Field)
		}
	}
	return out
}

// Has reports whether any failure was produced by tag.
func (v ValidationErrors) Has(tag string) bool {
	for _, e := range v {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}
	return err
}

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }

// EchoValidator adapts ValidateStruct to echo.Validator.
type EchoValidator struct{}

func (EchoValidator) Validate(i interface{}) error { return ValidateStruct(i) }

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if comma := strings.Index(name, ","); comma != -1 {
				name = name[:comma]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
	})
	return validate
}
