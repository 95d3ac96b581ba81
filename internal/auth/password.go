package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the rest of the platform uses.
const bcryptCost = 10

// weakSubstrings are rejected outright during registration. This is a minimal
// gate, not entropy scoring; the front end does the friendlier validation.
var weakSubstrings = []string{"password", "123456"}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", Errorf(ErrInternal, "password hashing failed")
	}
	return string(hashed), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength rejects passwords containing common weak substrings.
func ValidatePasswordStrength(password string) error {
	lower := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lower, weak) {
			return Errorf(ErrBadRequest, "weak password")
		}
	}
	return nil
}
