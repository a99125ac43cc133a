package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// CredentialVerifier hashes and checks user passwords.
type CredentialVerifier struct{}

// NewCredentialVerifier creates a bcrypt-backed credential verifier.
func NewCredentialVerifier() *CredentialVerifier {
	return &CredentialVerifier{}
}

// Hash returns the bcrypt hash of the given plain-text password.
func (v *CredentialVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plain-text password matches the stored hash.
func (v *CredentialVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
