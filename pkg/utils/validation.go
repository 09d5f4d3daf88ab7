package utils

import (
	"fmt"
	"strings"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("node_type", func(fl validator.FieldLevel) bool {
		return valueobjects.ParseNodeType(fl.Field().String()).IsKnown()
	})
	_ = v.RegisterValidation("relationship", func(fl validator.FieldLevel) bool {
		rel := valueobjects.ParseRelationship(fl.Field().String())
		return rel.IsConcrete() || rel == valueobjects.RelationshipAny
	})
	_ = v.RegisterValidation("concrete_relationship", func(fl validator.FieldLevel) bool {
		return valueobjects.ParseRelationship(fl.Field().String()).IsConcrete()
	})
	_ = v.RegisterValidation("path_type", func(fl validator.FieldLevel) bool {
		return valueobjects.ParsePathType(fl.Field().String()) != valueobjects.PathTypeUnknown
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return pkgerrors.NewValidationError(strings.Join(messages, "; "))
	}
	return pkgerrors.NewValidationError(err.Error())
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "node_type":
		return fmt.Sprintf("%s must be a known node type", field)
	case "relationship", "concrete_relationship":
		return fmt.Sprintf("%s must be a known relationship", field)
	case "path_type":
		return fmt.Sprintf("%s must be a known path type", field)
	case "dive":
		return fmt.Sprintf("%s contains invalid values", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
