// utils/valid.go
package utils

import (
	"regexp"
	"strings"

	"github.com/immuneplus/immuneplus_backend/models"
)

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidatePhoneNumber checks the 10-digit phone shape used throughout
// the app and returns a field-keyed error for the validations list.
func ValidatePhoneNumber(phone string) *models.FieldError {
	if phone == "" {
		return &models.FieldError{Key: "phoneNumber", Message: "Phone Number is required."}
	}
	if !phoneRegex.MatchString(phone) {
		return &models.FieldError{Key: "phoneNumber", Message: "Phone Number should have 10 digits."}
	}
	return nil
}

// ValidateEmail checks email shape. Empty email passes; email is
// optional everywhere it appears.
func ValidateEmail(email string) *models.FieldError {
	if email != "" && !emailRegex.MatchString(email) {
		return &models.FieldError{Key: "email", Message: "Email is not valid"}
	}
	return nil
}

// RequireField reports a missing required field.
func RequireField(key, value, label string) *models.FieldError {
	if strings.TrimSpace(value) == "" {
		return &models.FieldError{Key: key, Message: label + " is required"}
	}
	return nil
}

// CollectErrors filters out nil entries so callers can build a
// validations list in one expression.
func CollectErrors(errs ...*models.FieldError) []models.FieldError {
	var out []models.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
