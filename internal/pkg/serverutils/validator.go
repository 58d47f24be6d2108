package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"confidential-chat-be/internal/dto"
	"confidential-chat-be/internal/entity"
	"confidential-chat-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(sparseValue, dto.Field[string]{}, dto.Field[bool]{})

	_ = v.RegisterValidation("issuetag", func(fl validator.FieldLevel) bool {
		return entity.IsIssueTag(fl.Field().String())
	})
	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return entity.Severity(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return entity.Priority(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

type sparseField interface {
	ValidationValue() interface{}
}

// sparseValue validates a dto.Field by the value it carries.
func sparseValue(field reflect.Value) interface{} {
	if f, ok := field.Interface().(sparseField); ok {
		return f.ValidationValue()
	}
	return nil
}

// ValidateRequest checks the validate tags of a request DTO and reports the
// first failures as one validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation("invalid request")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "issuetag":
		return fmt.Sprintf("%s: unknown issue tag %q", field, fe.Value())
	case "severity", "priority":
		return fmt.Sprintf("%s: invalid %s %q", field, fe.Tag(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", field, fe.Param())
	case "uuid":
		return field + " must be a UUID"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
