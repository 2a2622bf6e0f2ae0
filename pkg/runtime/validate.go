package runtime

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a generated request structure before it is encoded.
// Structures without validate tags always pass.
func Validate(v any) error {
	return validate.Struct(v)
}
