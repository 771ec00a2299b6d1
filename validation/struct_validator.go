package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/speakerkit/errors"
)

// tagMessages maps validator tags to messages. %s receives the tag param.
var tagMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gt":            "must be greater than %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"url":           "must be a valid URL",
	"uuid":          "must be a valid UUID",
	"hostname_port": "must be host:port",
	"oneof":         "must be one of: %s",
}

// nameTags are consulted in order for a field's reported name.
var nameTags = []string{"json", "mapstructure", "form"}

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

func fieldName(f reflect.StructField) string {
	for _, tag := range nameTags {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return snakeCase(f.Name)
}

// Validate checks a struct's `validate` tags and returns an INVALID_INPUT
// AppError listing every failing field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !stderrors.As(err, &failures) {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, len(failures))
	for i, fe := range failures {
		fields[i] = FieldError{Field: fieldPath(fe), Message: message(fe)}
	}
	return fieldsError(fields)
}

// fieldPath drops the root struct name so nested config fields read like
// "qdrant.port".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "gtefield" {
		return "must not be less than " + snakeCase(fe.Param())
	}
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, fe.Param())
	}
	return format
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
