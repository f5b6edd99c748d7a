package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse describes one failed validation rule on one struct field.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

// Describe renders the failure as the human-readable fragment the API
// returns, e.g. "field 'Items' failed on tag 'min'".
func (e *ErrorResponse) Describe() string {
	return fmt.Sprintf("field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

func init() {
	// uuid_required rejects the zero UUID, which `required` alone does not
	// catch on a uuid.UUID field.
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

// ValidateStruct runs the struct's `validate` tags and returns one
// ErrorResponse per failed rule, or nil when the value is valid.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
