package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/config"
	"github.com/AmitSaha9928/book-stack/internal/model"
	"github.com/AmitSaha9928/book-stack/internal/repository"
	"github.com/AmitSaha9928/book-stack/internal/utils"
)

// AuthHandler bundles dependencies for registration and login.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber string  `json:"phoneNumber"`
	UserRole    string  `json:"userRole"` // ADMIN | MEMBER
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	UserImg     *string `json:"userImg"` // optional avatar reference
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID          uint64    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	UserImg     *string   `json:"userImg,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	User  userPart  `json:"user"`
	Token tokenPart `json:"token"`
}

// sanitizeUser strips the credential digest from a user record before
// it goes on the wire.
func sanitizeUser(u model.User) userPart {
	return userPart{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		UserImg:     u.UserImg,
		CreatedAt:   u.CreatedAt,
	}
}

// Register creates a user account. Mandatory fields are checked in a
// fixed order and the first missing one is named in a 422 response. An
// existing non-deleted user sharing the email or username is a terminal
// "already exists" outcome: the response carries status 409 with the
// existing record and the error flag false, since a duplicate signup is
// an expected business result and not a retryable failure.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if missing := firstMissing([]field{
		{"firstName", req.FirstName == ""},
		{"lastName", req.LastName == ""},
		{"phoneNumber", req.PhoneNumber == ""},
		{"userRole", req.UserRole == ""},
		{"username", req.Username == ""},
		{"email", req.Email == ""},
		{"password", req.Password == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	role := strings.ToUpper(strings.TrimSpace(req.UserRole))
	if role != model.RoleAdmin && role != model.RoleMember {
		role = model.RoleMember
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Users.FindByEmailOrUsername(ctx, req.Email, req.Username)
	switch {
	case err == nil:
		return respond(c, http.StatusConflict, false, "user already exists", sanitizeUser(existing))
	case err != sql.ErrNoRows:
		return respond(c, http.StatusInternalServerError, true, "lookup failed", nil)
	}

	uid, err := h.Users.Create(ctx, model.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
		UserImg:     req.UserImg,
	}, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrDuplicate {
			// Concurrent signup won the race; report the record that
			// exists now, same terminal outcome as the lookup path.
			if u, lookErr := h.Users.FindByEmailOrUsername(ctx, req.Email, req.Username); lookErr == nil {
				return respond(c, http.StatusConflict, false, "user already exists", sanitizeUser(u))
			}
			return respond(c, http.StatusConflict, false, "user already exists", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "create user failed", nil)
	}

	created, err := h.Users.GetActiveByID(ctx, uid)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "load user failed", nil)
	}
	return respond(c, http.StatusCreated, false, "user created successfully", sanitizeUser(created))
}

// Login verifies credentials and issues a session token. An unknown or
// inactive email is 404, a wrong password is 401; bcrypt's comparison
// is constant-time, so the two cases are only distinguishable by which
// record exists. The returned token is verifiable later with nothing
// but the signing secret.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if missing := firstMissing([]field{
		{"email", req.Email == ""},
		{"password", req.Password == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "user not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respond(c, http.StatusUnauthorized, true, "password does not match", nil)
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "issue token failed", nil)
	}
	return respond(c, http.StatusOK, false, "login successful", loginResp{
		User:  sanitizeUser(u),
		Token: tokenPart{Token: tok.Token, Expires: tok.Exp},
	})
}

// Me returns the authenticated user's record, digest stripped.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetActiveByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "user not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "load user failed", nil)
	}
	return respond(c, http.StatusOK, false, "current user", sanitizeUser(u))
}
