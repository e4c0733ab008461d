package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/accounts-api/internal/api/metrics"
	"github.com/sirpyerre/accounts-api/internal/core/domain"
	"github.com/sirpyerre/accounts-api/internal/core/ports"
)

// profilePicField is the multipart field carrying the optional image on /adduser.
const profilePicField = "profilePic"

// AccountHandler handles HTTP requests for account operations. Errors are
// returned to Echo and rendered by the central error handler.
type AccountHandler struct {
	service ports.AccountService
	metrics *metrics.Metrics
}

func NewAccountHandler(service ports.AccountService, m *metrics.Metrics) *AccountHandler {
	return &AccountHandler{service: service, metrics: m}
}

// bind decodes and validates the request body, reporting both kinds of
// failure as validation errors.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	return c.Validate(req)
}

// Signup handles POST /signup.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Email or phone number, password and profile"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc, err := h.service.Signup(c.Request().Context(), ports.SignupInput{
		Profile:  req.toProfile(),
		Password: req.Password,
	})
	if err != nil {
		return fail("Error creating user", err)
	}

	h.metrics.AccountsCreated.WithLabelValues(metrics.SourceSignup).Inc()
	return c.JSON(http.StatusCreated, accountResponse{Message: "User created successfully", User: acc})
}

// Login handles POST /login. The login value is matched against both email
// and phone number. No session or token is issued.
//
// @Summary      Verify credentials
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login (email or phone number) and password"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc, err := h.service.Login(c.Request().Context(), req.Login, req.Password)
	h.metrics.LoginAttempts.WithLabelValues(metrics.LoginResult(err)).Inc()
	if err != nil {
		return fail("Error logging in", err)
	}

	return c.JSON(http.StatusOK, accountResponse{Message: "Login successful", User: acc})
}

// AddUser handles POST /adduser. It accepts JSON or a multipart form; in the
// latter case an image may be attached under the profilePic field.
//
// @Summary      Create an account on behalf of another
// @Tags         accounts
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        email          formData  string  false  "Email (email or phoneNumber required)"
// @Param        phoneNumber    formData  string  false  "Phone number (email or phoneNumber required)"
// @Param        firstName      formData  string  false  "First name"
// @Param        middleName     formData  string  false  "Middle name"
// @Param        lastName       formData  string  false  "Last name"
// @Param        address        formData  string  false  "Address"
// @Param        profession     formData  string  false  "Profession"
// @Param        password       formData  string  false  "Password"
// @Param        userAddedFrom  formData  string  false  "Identifier of the creating account"
// @Param        profilePic     formData  file    false  "Profile picture (jpg, jpeg, png, gif)"
// @Success      201            {object}  accountResponse
// @Failure      400            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /adduser [post]
func (h *AccountHandler) AddUser(c echo.Context) error {
	var req addUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := ports.AddAccountInput{
		Profile:  req.toProfile(),
		Password: req.Password,
		AddedBy:  req.UserAddedFrom,
	}

	fh, err := c.FormFile(profilePicField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return fail("Error creating user", err)
		}
		defer f.Close()
		input.Image = &ports.ImageUpload{Filename: fh.Filename, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no picture
	default:
		return domain.NewValidationError("invalid multipart body")
	}

	acc, err := h.service.AddAccount(c.Request().Context(), input)
	if input.Image != nil {
		h.metrics.ImageUploads.WithLabelValues(metrics.UploadResult(err)).Inc()
	}
	if err != nil {
		return fail("Error creating user", err)
	}

	h.metrics.AccountsCreated.WithLabelValues(metrics.SourceAddUser).Inc()
	return c.JSON(http.StatusCreated, accountResponse{Message: "User created successfully", User: acc})
}

// List handles GET /getAllUsers.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  accountListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /getAllUsers [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return fail("Error fetching users", err)
	}
	return c.JSON(http.StatusOK, accountListResponse{Message: "Users fetched successfully", Users: accounts})
}

// Get handles GET and POST /getUser/:id.
//
// @Summary      Get an account by identifier
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account identifier"
// @Success      200  {object}  accountResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /getUser/{id} [get]
// @Router       /getUser/{id} [post]
func (h *AccountHandler) Get(c echo.Context) error {
	acc, err := h.service.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail("Error get user details", err)
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User get successfully", User: acc})
}

// Edit handles POST /editUser/:id.
//
// @Summary      Edit an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Account identifier"
// @Param        body  body      editUserRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /editUser/{id} [post]
func (h *AccountHandler) Edit(c echo.Context) error {
	var req editUserRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}

	acc, err := h.service.EditAccount(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return fail("Error updating user details", err)
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "User updated successfully", User: acc})
}
