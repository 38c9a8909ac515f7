package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to an error code ("required", "out_of_range"...).
// Codes are translated by i18n when rendered.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lets Violations travel as an error from services to handlers.
func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for field, code := range v {
		parts = append(parts, field+": "+code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns v as an error, or nil when empty.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// AsViolations extracts Violations from err.
func AsViolations(err error) (Violations, bool) {
	var v Violations
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their json name so API clients see the keys they sent.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// tag -> code
var codes = map[string]string{
	"required": "required",
	"gt":       "must_be_positive",
	"gte":      "out_of_range",
	"lte":      "out_of_range",
	"min":      "out_of_range",
	"max":      "out_of_range",
	"oneof":    "invalid_choice",
	"email":    "invalid_email",
}

// Struct runs the `validate` struct tags of s and returns the violations.
func Struct(s any) Violations {
	v := Violations{}
	err := engine().Struct(s)
	if err == nil {
		return v
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range ves {
		code, ok := codes[fe.Tag()]
		if !ok {
			code = fe.Tag()
		}
		v[fe.Field()] = code
	}
	return v
}
