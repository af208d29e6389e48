package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// DefaultBcryptCost is the work factor used when none is configured
const DefaultBcryptCost = 10

// ErrPasswordTooLong is returned by Hash for passwords over 72 bytes
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher turns plaintext passwords into one-way salted hashes
type Hasher interface {
	Hash(plain string) (string, error) // Hash a plaintext password
	Compare(hash, plain string) error  // Nil if plain matches hash
}

// BcryptHasher implements Hasher with bcrypt
type BcryptHasher struct {
	Cost int // bcrypt work factor
}

// NewBcryptHasher returns a hasher with the given cost, falling back to
// DefaultBcryptCost when cost is out of bcrypt's range
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt hash of plain
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare checks plain against a stored hash
func (h *BcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
