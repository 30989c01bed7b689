package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
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

// FieldError describes one rejected field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Validate checks v against its `validate` struct tags. Failures come back as
// a 422 AppError listing the offending fields.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError("VALIDATION_FAILED", "invalid payload", http.StatusUnprocessableEntity, err)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag(), Param: fe.Param()})
	}
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "invalid payload",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        err,
		Details:    fields,
	}
}

// Drop the root struct name: "createBrand.name" -> "name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// DecodeJSON reads a JSON body into dst and validates it. Unknown fields
// and trailing data are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewAppError("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewAppError("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest, errors.New("decode body: trailing data"))
	}
	return Validate(dst)
}
