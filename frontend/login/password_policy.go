package login

import (
	"strings"
	"unicode"

	"logistica/infrastructure/apperr"
)

const MinPasswordLength = 8

// ValidatePasswordPolicy requires at least MinPasswordLength characters with
// one letter and one digit.
func ValidatePasswordPolicy(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.Validation("senha é obrigatória")
	}
	if len([]rune(password)) < MinPasswordLength {
		return apperr.Validation("a senha deve ter pelo menos 8 caracteres")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperr.Validation("a senha deve conter letras e números")
	}
	return nil
}
