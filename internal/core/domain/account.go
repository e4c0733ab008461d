package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrAccountExists      = errors.New("account already exists with the given email/phone number")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a client-facing detail and matches ErrValidation.
type ValidationError struct {
	Detail string
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Detail
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Profile holds the descriptive and identity fields shared by every write path.
type Profile struct {
	FirstName   string `json:"firstName,omitempty"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	Profession  string `json:"profession,omitempty"`
}

// HasIdentity reports whether at least one login identity is populated.
func (p Profile) HasIdentity() bool {
	return p.Email != "" || p.PhoneNumber != ""
}

// Account is the persisted account record. PasswordHash never leaves the
// service boundary.
type Account struct {
	ID string `json:"_id"`
	Profile
	ProfilePic   string    `json:"profilePic"`
	PasswordHash string    `json:"-"`
	IsLogin      bool      `json:"isLogin"`
	AddedBy      string    `json:"userAddedFrom,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`
}

// AccountDraft is what creating operations hand to the store. Password is
// plaintext; the store hashes it before persisting.
type AccountDraft struct {
	Profile
	Password   string
	ProfilePic string
	AddedBy    string
}

// AccountPatch is a partial update. Nil fields are left untouched.
type AccountPatch struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	Address     *string
	PhoneNumber *string
	Email       *string
	Profession  *string
	ProfilePic  *string
	Password    *string
	IsLogin     *bool
	AddedBy     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.FirstName == nil && p.MiddleName == nil && p.LastName == nil &&
		p.Address == nil && p.PhoneNumber == nil && p.Email == nil &&
		p.Profession == nil && p.ProfilePic == nil && p.Password == nil &&
		p.IsLogin == nil && p.AddedBy == nil
}
