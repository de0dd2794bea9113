package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on change or reset.
const MinPasswordLength = 6

func hashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// checkPassword reports whether password matches hash. Errors other than a
// mismatch (e.g. a corrupt hash) are returned.
func checkPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// HashPassword hashes with the default bcrypt cost. It backs the
// hash-password command.
func HashPassword(password string) (string, error) {
	return hashPassword(password, bcrypt.DefaultCost)
}
