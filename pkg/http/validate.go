package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// Validator returns the shared validator so other transports validate the
// same way the HTTP layer does.
func Validator() *validator.Validate { return validate }

// rule describes how a failed tag is reported: the message format gets the
// field path and the tag parameter, param names the Params key.
type rule struct {
	format string
	param  string
}

var rules = map[string]rule{
	"required": {format: "%s is required"},
	"uuid":     {format: "%s must be a valid UUID"},
	"min":      {format: "%s must be at least %s", param: "min"},
	"max":      {format: "%s must be at most %s", param: "max"},
	"gte":      {format: "%s must be greater than or equal to %s", param: "min"},
	"lte":      {format: "%s must be less than or equal to %s", param: "max"},
	"gt":       {format: "%s must be greater than %s", param: "value"},
	"lt":       {format: "%s must be less than %s", param: "value"},
	"oneof":    {format: "%s must be one of: %s", param: "options"},
}

// ReadAndValidateRequest binds the body into req, fills defaults and
// validates. It returns nil or the error list to answer with.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return validationErrors(err)
	}
	return ValidateRequest(c, req)
}

// ValidateRequest fills defaults and validates a request bound by other means.
func ValidateRequest(c echo.Context, req interface{}) interface{} {
	return ValidateStruct(c.Request().Context(), req)
}

// ValidateStruct fills defaults and validates req, returning the same error
// payload the HTTP handlers send.
func ValidateStruct(ctx context.Context, req interface{}) interface{} {
	if err := defaults.Set(req); err != nil {
		return validationErrors(err)
	}
	if err := validate.StructCtx(ctx, req); err != nil {
		return validationErrors(err)
	}
	return nil
}

func validationErrors(err error) []ValidationError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]ValidationError, 0, len(ves))
		for _, fe := range ves {
			out = append(out, toValidationError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprintf("%v", he.Message)
	}
	return []ValidationError{{Code: CodeUnknown, Message: msg}}
}

func toValidationError(fe validator.FieldError) ValidationError {
	field := fieldPath(fe)
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: field,
	}

	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
		return ve
	}
	if strings.Count(r.format, "%s") == 2 {
		param := fe.Param()
		if fe.Tag() == "oneof" {
			param = strings.ReplaceAll(param, " ", ", ")
		}
		ve.Message = fmt.Sprintf(r.format, field, param)
		if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
			ve.Message += " characters"
		}
	} else {
		ve.Message = fmt.Sprintf(r.format, field)
	}

	if r.param != "" {
		var v interface{} = fe.Param()
		if fe.Tag() == "oneof" {
			v = strings.Fields(fe.Param())
		}
		ve.Params = map[string]interface{}{r.param: v}
	}
	return ve
}

// fieldPath returns the dotted json path of the failing field without the
// request type name, e.g. "template.weights.requests".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}
