package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Refresh tokens are JWTs and routinely exceed bcrypt's 72-byte input limit,
// so they are reduced to a SHA-256 hex digest before hashing.
func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

// Hash returns the storable bcrypt hash of a refresh token.
func Hash(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(digest(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(h), nil
}

// Matches reports whether token corresponds to the stored hash.
func Matches(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(token)) == nil
}
