package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kbukum/speakerkit/errors"
)

// FieldError is one failed check, reported under the request field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors for checks tags cannot express, such
// as the audio extension of an upload. Methods chain; Validate reports
// everything collected at once.
type Validator struct {
	errs []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failed check on field.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Errors returns the failed checks in the order they ran.
func (v *Validator) Errors() []FieldError { return v.errs }

// Validate returns nil, or an INVALID_INPUT error listing every failed
// field in its message and under Details["fields"].
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errs)
}

func fieldsError(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	appErr := errors.Validation(strings.Join(parts, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

// Required fails on an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength fails when value is longer than n bytes.
func (v *Validator) MaxLength(field, value string, n int) *Validator {
	if len(value) > n {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", n))
	}
	return v
}

// Extension fails unless filename ends in one of allowed. The comparison
// ignores case and allowed entries include the dot.
func (v *Validator) Extension(field, filename string, allowed []string) *Validator {
	if strings.TrimSpace(filename) == "" {
		v.AddError(field, "no filename provided")
		return v
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("unsupported audio format: %q, supported: %s", ext, strings.Join(allowed, ", ")))
	return v
}
