package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

// DefaultCost is the bcrypt work factor applied to stored passwords.
const DefaultCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or DefaultCost when cost is out
// of bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects passwords longer than MaxPasswordBytes with a validation error
// instead of truncating them.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password must not exceed %d bytes", MaxPasswordBytes)
		}
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}
