package handler

import "github.com/sirpyerre/accounts-api/internal/core/domain"

// ErrorResponse is the envelope returned on all 4xx/5xx responses. Error is a
// stable machine-readable code.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// --- Request types ---

// ProfileRequest carries the fields shared by signup and add-user. Either
// email or phoneNumber must be present. It is exported because echo's form
// binder only fills embedded structs it can set.
type ProfileRequest struct {
	FirstName   string `json:"firstName"   form:"firstName"`
	MiddleName  string `json:"middleName"  form:"middleName"`
	LastName    string `json:"lastName"    form:"lastName"`
	Address     string `json:"address"     form:"address"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" validate:"required_without=Email"`
	Email       string `json:"email"       form:"email"       validate:"required_without=PhoneNumber"`
	Profession  string `json:"profession"  form:"profession"`
}

func (r ProfileRequest) toProfile() domain.Profile {
	return domain.Profile{
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		LastName:    r.LastName,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Profession:  r.Profession,
	}
}

type signupRequest struct {
	ProfileRequest
	Password string `json:"password" form:"password" validate:"required"`
}

// loginRequest identifies the account by email or phone number.
type loginRequest struct {
	Login    string `json:"login"    form:"login"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type addUserRequest struct {
	ProfileRequest
	Password      string `json:"password"      form:"password"`
	UserAddedFrom string `json:"userAddedFrom" form:"userAddedFrom" validate:"omitempty,mongodb"`
}

// editUserRequest is a partial update: absent fields are left untouched.
type editUserRequest struct {
	FirstName     *string `json:"firstName"`
	MiddleName    *string `json:"middleName"`
	LastName      *string `json:"lastName"`
	Address       *string `json:"address"`
	PhoneNumber   *string `json:"phoneNumber"`
	Email         *string `json:"email"`
	Profession    *string `json:"profession"`
	ProfilePic    *string `json:"profilePic"`
	Password      *string `json:"password"`
	IsLogin       *bool   `json:"isLogin"`
	UserAddedFrom *string `json:"userAddedFrom"`
}

func (r editUserRequest) toPatch() domain.AccountPatch {
	return domain.AccountPatch{
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		LastName:    r.LastName,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Profession:  r.Profession,
		ProfilePic:  r.ProfilePic,
		Password:    r.Password,
		IsLogin:     r.IsLogin,
		AddedBy:     r.UserAddedFrom,
	}
}

// --- Response types ---

type accountResponse struct {
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
}

type accountListResponse struct {
	Message string            `json:"message"`
	Users   []*domain.Account `json:"users"`
}
