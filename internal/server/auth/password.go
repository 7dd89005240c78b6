package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into opaque one-way hashes and
// checks candidates against them.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt. Zero Cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) cost() int {
	if h.Cost < bcrypt.MinCost || h.Cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify never fails loudly: a malformed or empty hash is simply a mismatch.
// The comparison itself runs in constant time.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
