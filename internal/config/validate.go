package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// domainRegex matches dotted host names made of RFC 1123 labels.
var domainRegex = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// validate is shared by every Validate call. Field errors are reported by
// the flag that sets the field.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return name
		}
		return fld.Name
	})
	_ = v.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) <= 253 && domainRegex.MatchString(s)
	})
	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	return v
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks every field of the configuration.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, structProblems(c)...)

	if c.Backup != nil {
		problems = append(problems, structProblems(c.Backup)...)
		if c.Backup.Endpoint != "" {
			if u, err := url.Parse(c.Backup.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				problems = append(problems, fmt.Sprintf("--s3-endpoint: %q is not a URL", c.Backup.Endpoint))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func structProblems(s any) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return problems
}

func describe(fe validator.FieldError) string {
	name := "--" + fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return name + " is required"
	case "email":
		return fmt.Sprintf("%s: %q is not a valid e-mail address", name, fe.Value())
	case "domain":
		return fmt.Sprintf("%s: %q is not a valid domain name", name, fe.Value())
	case "abspath":
		return fmt.Sprintf("%s: %q must be an absolute path", name, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: %q must be one of %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max", "gt", "gte", "lte":
		return fmt.Sprintf("%s: %v violates %s=%s", name, fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s: %v is invalid (%s)", name, fe.Value(), fe.Tag())
	}
}
