package dto

import (
	"errors"
	"fmt"
	"strings"

	"booksync/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("review_status", validateReviewStatus)
	}
}

func validateReviewStatus(fl validator.FieldLevel) bool {
	return models.IsValidStatus(fl.Field().String())
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BindingErrors turns a ShouldBindJSON error into per-field messages.
// It returns nil when err is not a validation error (e.g. malformed JSON).
func BindingErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "review_status":
			message = fmt.Sprintf("%s must be one of: %s, %s", field, models.StatusReading, models.StatusRead)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, FieldError{
			Field:   strings.ToLower(field[:1]) + field[1:],
			Message: message,
		})
	}
	return out
}

// HasTag reports whether err is a validation error that failed on tag.
func HasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
