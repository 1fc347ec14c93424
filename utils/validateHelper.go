package utils

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate returns the shared validator instance used outside gin's binding
// layer (workers, pubsub handlers, model-level checks).
func Validate() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs struct tag validation and folds the first failure into
// the ValidationError taxonomy.
func ValidateStruct(s interface{}) error {
	if err := Validate().Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return err
		}
		ve := verrs[0]
		return NewValidationError(strings.ToLower(ve.Field()), "failed on "+ve.Tag())
	}
	return nil
}

type RequiredField struct {
	Name  string
	Value string
}

// RequireNonEmpty returns a ValidationError naming the first blank field.
func RequireNonEmpty(fields ...RequiredField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return NewValidationError(f.Name, "is required")
		}
	}
	return nil
}
