package ports

import (
	"context"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// FindByIdentity returns the account whose email or phone number matches one
	// of the non-empty values. It is an existence check, not a lock.
	FindByIdentity(ctx context.Context, email, phoneNumber string) (*domain.Account, error)
	// Insert assigns the identifier and creation timestamp and hashes the draft
	// password, if any, before persisting.
	Insert(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	// UpdateByID merges the patch into the stored account and returns the result.
	UpdateByID(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
}

// PasswordHasher is the one-way transformation applied to passwords on write.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) error
}
