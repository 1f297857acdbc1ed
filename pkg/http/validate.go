package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// newValidator reports fields by their wire name (json, then query tag) so
// messages match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ReadAndValidateRequest binds path, query and body, applies struct defaults
// and validates. It returns nil when req is usable.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fes validator.ValidationErrors
	if errors.As(err, &fes) {
		out := make([]ValidationError, 0, len(fes))
		for _, fe := range fes {
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Params:  fieldParams(fe),
			})
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_BIND", Message: msg}}
}

var tagMessages = map[string]string{
	"required": "%s is required",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be at most %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not set", field, strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf(tagMessages[fe.Tag()]+" characters", field, fe.Param())
		}
	}
	if format, ok := tagMessages[fe.Tag()]; ok {
		if strings.Count(format, "%s") == 1 {
			return fmt.Sprintf(format, field)
		}
		return fmt.Sprintf(format, field, fe.Param())
	}
	return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
}

func fieldParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "min", "gte", "gt":
		return map[string]interface{}{"min": fe.Param()}
	case "max", "lte", "lt":
		return map[string]interface{}{"max": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Split(fe.Param(), " ")}
	}
	return nil
}
