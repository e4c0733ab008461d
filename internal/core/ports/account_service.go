package ports

import (
	"context"
	"io"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
)

// SignupInput is the DTO for self-service account creation.
type SignupInput struct {
	Profile  domain.Profile
	Password string
}

// ImageUpload is an optional file that accompanied an add-account request.
type ImageUpload struct {
	Filename string
	Content  io.ReadSeeker
}

// AddAccountInput is the DTO for creating an account on behalf of another.
type AddAccountInput struct {
	Profile  domain.Profile
	Password string // optional on this path
	AddedBy  string // optional account identifier, not checked for existence
	Image    *ImageUpload
}

// AccountService defines use-case operations for accounts.
type AccountService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.Account, error)
	Login(ctx context.Context, login, password string) (*domain.Account, error)
	AddAccount(ctx context.Context, input AddAccountInput) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	EditAccount(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
}

// ImageStore persists uploaded profile pictures and returns the stored path.
type ImageStore interface {
	Save(ctx context.Context, filename string, src io.ReadSeeker) (string, error)
}
