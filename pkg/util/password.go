package util

import (
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is deliberately below bcrypt.DefaultCost; login sits
// on the hot path and the service runs behind an internal gateway.
const passwordHashCost = 8

// HashPassword turns a plaintext password into a bcrypt hash.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
