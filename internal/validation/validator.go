package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
)

// New returns a validator that reports fields by their json names.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Check validates in and merges the result with problems already collected
// while decoding. It returns a KindValidation error or nil.
func Check(v *validatorv10.Validate, in any, problems map[string]string) error {
	fields := map[string]string{}
	for k, msg := range problems {
		fields[k] = msg
	}
	if err := v.Struct(in); err != nil {
		for k, msg := range Fields(err) {
			if _, seen := fields[k]; !seen {
				fields[k] = msg
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return appErrors.NewValidation(Summary(fields), fields)
}

// Fields turns validator errors into field → message.
func Fields(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		if fe.Param() == "0" {
			return "must be a non-negative number"
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

// Summary renders the first field, in name order, as "<field> <message>".
func Summary(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "invalid request"
	}
	return names[0] + " " + fields[names[0]]
}
