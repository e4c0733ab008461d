package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
	"github.com/sirpyerre/accounts-api/internal/core/ports"
)

// IdentityGuard abstracts the short-lived identity reservation (Redis) taken
// while an account is being created.
type IdentityGuard interface {
	Reserve(ctx context.Context, email, phoneNumber string) (bool, error)
	Release(ctx context.Context, email, phoneNumber string) error
}

type nopGuard struct{}

func (nopGuard) Reserve(context.Context, string, string) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string, string) error         { return nil }

// AccountService implements the account use cases on top of an AccountRepository.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	images ports.ImageStore
	guard  IdentityGuard
	logger zerolog.Logger
}

// NewAccountService wires the service. A nil guard disables identity reservation.
func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	images ports.ImageStore,
	guard IdentityGuard,
	logger zerolog.Logger,
) *AccountService {
	if guard == nil {
		guard = nopGuard{}
	}
	return &AccountService{repo: repo, hasher: hasher, images: images, guard: guard, logger: logger}
}

// Signup creates an account from a self-service request. Email or phone number
// and a password are mandatory.
func (s *AccountService) Signup(ctx context.Context, in ports.SignupInput) (*domain.Account, error) {
	if !in.Profile.HasIdentity() || in.Password == "" {
		return nil, domain.NewValidationError("email/phone number and password are required")
	}
	return s.create(ctx, domain.AccountDraft{Profile: in.Profile, Password: in.Password}, nil)
}

// AddAccount creates an account on behalf of another one. Password is optional
// and AddedBy is recorded as given.
func (s *AccountService) AddAccount(ctx context.Context, in ports.AddAccountInput) (*domain.Account, error) {
	if !in.Profile.HasIdentity() {
		return nil, domain.NewValidationError("email/phone number are required")
	}
	draft := domain.AccountDraft{
		Profile:  in.Profile,
		Password: in.Password,
		AddedBy:  in.AddedBy,
	}
	return s.create(ctx, draft, in.Image)
}

func (s *AccountService) create(ctx context.Context, draft domain.AccountDraft, image *ports.ImageUpload) (*domain.Account, error) {
	// 1. Reserve the identity so concurrent creates for it fail fast.
	reserved, err := s.guard.Reserve(ctx, draft.Email, draft.PhoneNumber)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("identity reservation failed, creating anyway")
	case !reserved:
		return nil, domain.ErrAccountExists
	default:
		defer func() {
			if err := s.guard.Release(ctx, draft.Email, draft.PhoneNumber); err != nil {
				s.logger.Warn().Err(err).Msg("failed to release identity reservation")
			}
		}()
	}

	// 2. Existence check. The unique indexes catch whatever slips past it.
	if err := s.ensureIdentityFree(ctx, draft.Email, draft.PhoneNumber, ""); err != nil {
		return nil, err
	}

	// 3. Store the picture, if any. It is not removed when the insert fails.
	if image != nil {
		path, err := s.images.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, fmt.Errorf("save profile picture: %w", err)
		}
		draft.ProfilePic = path
	}

	acc, err := s.repo.Insert(ctx, draft)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountExists) && !errors.Is(err, domain.ErrValidation) {
			s.logger.Error().Err(err).Msg("failed to insert account")
		}
		return nil, err
	}

	s.logger.Info().Str("account_id", acc.ID).Str("added_by", acc.AddedBy).Msg("account created")
	return acc, nil
}

// Login verifies a password against the account whose email or phone number
// equals login. No session is created.
func (s *AccountService) Login(ctx context.Context, login, password string) (*domain.Account, error) {
	acc, err := s.repo.FindByIdentity(ctx, login, login)
	if err != nil {
		return nil, err
	}
	if s.hasher.Compare(acc.PasswordHash, password) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.FindAll(ctx)
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// EditAccount applies a partial update. A changed email or phone number must
// not belong to another account.
func (s *AccountService) EditAccount(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	if patch.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}

	email, phone := deref(patch.Email), deref(patch.PhoneNumber)
	if email != "" || phone != "" {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return nil, err
		}
		// Checked one at a time: a single $or lookup may return this account
		// and hide a clash on the other field.
		if err := s.ensureIdentityFree(ctx, email, "", id); err != nil {
			return nil, err
		}
		if err := s.ensureIdentityFree(ctx, "", phone, id); err != nil {
			return nil, err
		}
	}

	acc, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", acc.ID).Bool("password_changed", deref(patch.Password) != "").Msg("account updated")
	return acc, nil
}

// ensureIdentityFree fails with ErrAccountExists when email or phoneNumber
// belongs to an account other than selfID.
func (s *AccountService) ensureIdentityFree(ctx context.Context, email, phoneNumber, selfID string) error {
	if email == "" && phoneNumber == "" {
		return nil
	}
	existing, err := s.repo.FindByIdentity(ctx, email, phoneNumber)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("identity check: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return domain.ErrAccountExists
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
