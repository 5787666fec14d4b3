package user

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/apperr"
)

const MinPasswordLength = 8

// ValidatePassword enforces the account password policy: at least eight
// characters with an uppercase letter, a lowercase letter, a digit and a
// special character. The returned error lists every unmet rule.
func ValidatePassword(password string) error {
	var problems []string
	if len(password) < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long")
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
		default:
			special = true
		}
	}
	if !upper {
		problems = append(problems, "Password must contain an uppercase letter")
	}
	if !lower {
		problems = append(problems, "Password must contain a lowercase letter")
	}
	if !digit {
		problems = append(problems, "Password must contain a digit")
	}
	if !special {
		problems = append(problems, "Password must contain a special character")
	}
	if len(problems) > 0 {
		return apperr.E(apperr.KindValidation, strings.Join(problems, ". "))
	}
	return nil
}

// HashPassword hashes with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
