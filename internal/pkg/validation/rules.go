package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/pkg/textnorm"
)

// Custom rule tags
const (
	TagEntityType = "entitytype"
	TagNotBlank   = "notblank"
)

// New returns a validator with the application rules registered.
// Field names in errors follow the json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation(TagEntityType, validateEntityType)
	_ = v.RegisterValidation(TagNotBlank, validateNotBlank)

	return v
}

func validateEntityType(fl validator.FieldLevel) bool {
	return models.EntityType(fl.Field().String()).Valid()
}

// validateNotBlank requires at least one letter or digit, so every
// accepted name has a non-empty comparison key.
func validateNotBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return true
	}
	return textnorm.Key(fl.Field().String()) != ""
}
