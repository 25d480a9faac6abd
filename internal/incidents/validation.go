package incidents

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Draft field names as reported in FieldErrors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldSeverity    = "severity"
)

// MinDescriptionLength is the minimum trimmed description length, in characters.
const MinDescriptionLength = 10

// FieldErrors maps a draft field name to a human-readable message.
// It only contains fields that failed validation.
type FieldErrors map[string]string

// Error implements error.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the field failed validation.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// draftInput is the trimmed form of a draft that the struct validator checks.
type draftInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required,min=10"`
	Severity    string `json:"severity" validate:"required,oneof=Low Medium High"`
}

var messages = map[string]map[string]string{
	FieldTitle: {
		"required": "Title is required",
	},
	FieldDescription: {
		"required": "Description is required",
		"min":      "Description should be at least 10 characters",
	},
	FieldSeverity: {
		"required": "Severity is required",
		"oneof":    "Severity must be Low, Medium or High",
	},
}

// Validator checks incident drafts.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a draft validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks every field of the draft and returns the failures.
// The result is empty, never nil, when the draft is valid.
func (v *Validator) Validate(d domain.Draft) FieldErrors {
	input := draftInput{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Severity:    strings.TrimSpace(string(d.Severity)),
	}

	errs := make(FieldErrors)
	err := v.validate.Struct(input)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs[FieldTitle] = err.Error()
		return errs
	}

	for _, fe := range validationErrors {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[fe.Field()] = msg
	}
	return errs
}
