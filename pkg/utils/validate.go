package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the validate tags on value and flattens any failures into
// a single readable error.
func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, flatten(err)
	}
	return value, nil
}

func flatten(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (%s)", msg, fe.Param())
		}
		parts = append(parts, msg)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}
