package domain

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

const passwordSpecials = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ValidatePasswordStrength checks the password policy: minimum length plus
// at least one uppercase letter, lowercase letter, digit and special
// character. Returns a weak_password error naming the first failed rule.
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword("must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return ErrWeakPassword("must contain at least one uppercase letter")
	case !lower:
		return ErrWeakPassword("must contain at least one lowercase letter")
	case !digit:
		return ErrWeakPassword("must contain at least one digit")
	case !special:
		return ErrWeakPassword("must contain at least one special character")
	}
	return nil
}
