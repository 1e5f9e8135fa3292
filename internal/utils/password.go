package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored on a user record. Plaintext
// passwords never persist anywhere else.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether the supplied password matches the stored
// hash. A malformed hash counts as a mismatch, not an error.
func CheckPasswordHash(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
