package validators

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate is a type alias for validator.Validate.
type Validate = validator.Validate

// ValidationErrors is a type alias for validator.ValidationErrors.
type ValidationErrors = validator.ValidationErrors

// FieldError is a type alias for validator.FieldError.
type FieldError = validator.FieldError

// TagDateLayout validates that a string is a Go time layout carrying year, month and day.
const TagDateLayout = "datelayout"

// layoutProbe has distinct year, month and day so a layout missing any of them fails the round trip.
var layoutProbe = time.Date(2017, time.March, 14, 0, 0, 0, 0, time.UTC)

// New creates a new validator instance with the project's custom tags registered.
func New() *Validate {
	v := validator.New()
	_ = v.RegisterValidation(TagDateLayout, validateDateLayout)
	return v
}

func validateDateLayout(fl validator.FieldLevel) bool {
	layout := fl.Field().String()
	if layout == "" {
		return false
	}
	parsed, err := time.Parse(layout, layoutProbe.Format(layout))
	if err != nil {
		return false
	}
	return parsed.Year() == layoutProbe.Year() &&
		parsed.Month() == layoutProbe.Month() &&
		parsed.Day() == layoutProbe.Day()
}
