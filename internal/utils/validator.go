package utils

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted by credential login
const MinPasswordLength = 6

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	return validate
}

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidatePassword checks the minimum length for credential login. Length is
// counted in characters, not bytes.
func ValidatePassword(password string) bool {
	return validate.Var(password, "min="+strconv.Itoa(MinPasswordLength)) == nil
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
