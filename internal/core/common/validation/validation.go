package validation

import (
	"fmt"
	"time"

	errors "github.com/Danhnam1/Audit-System-sub000/internal"
)

// ValidationBuilder accumulates field checks and reports them as one
// AppError with per-field details.
type ValidationBuilder struct {
	errors []errors.ValidationError
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		errors: make([]errors.ValidationError, 0),
	}
}

// Require records an error when a string field is empty.
func (v *ValidationBuilder) Require(field, value string) *ValidationBuilder {
	if value == "" {
		v.errors = append(v.errors, errors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    string(errors.ErrCodeMissingIdentifier),
		})
	}
	return v
}

// RequireTime records an error when a time field is the zero value.
func (v *ValidationBuilder) RequireTime(field string, value time.Time) *ValidationBuilder {
	if value.IsZero() {
		v.errors = append(v.errors, errors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Code:    string(errors.ErrCodeMissingIdentifier),
		})
	}
	return v
}

// MaxLength records an error when a string exceeds the given length.
func (v *ValidationBuilder) MaxLength(field, value string, max int) *ValidationBuilder {
	if len(value) > max {
		v.errors = append(v.errors, errors.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, max),
			Code:    string(errors.ErrCodeValidationFailed),
		})
	}
	return v
}

// Check records an error with the given message when ok is false.
func (v *ValidationBuilder) Check(field string, ok bool, message string, code errors.ErrorCode) *ValidationBuilder {
	if !ok {
		v.errors = append(v.errors, errors.ValidationError{
			Field:   field,
			Message: message,
			Code:    string(code),
		})
	}
	return v
}

// Validate returns nil when every check passed, otherwise a single
// validation AppError carrying all field failures.
func (v *ValidationBuilder) Validate() error {
	if len(v.errors) == 0 {
		return nil
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: v.errors})
}
