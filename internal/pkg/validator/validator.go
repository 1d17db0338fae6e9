package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentaldesk/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their JSON names so errors match the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// Struct validates v and reports the first failing field as an InvalidInputError.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &domain.InvalidInputError{Field: fe.Field(), Reason: reason}
	}
	return &domain.InvalidInputError{Reason: err.Error()}
}
