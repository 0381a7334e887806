package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/middleware"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

// AuthHandler serves registration, login, logout and password changes for
// both customers and professionals.
type AuthHandler struct {
	Creds  *service.CredentialStore
	Tokens *service.TokenService
	Log    *zap.Logger
}

func NewAuthHandler(creds *service.CredentialStore, tokens *service.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Creds: creds, Tokens: tokens, Log: log}
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required,notblank"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginResp struct {
	Token     string         `json:"token"`
	Expires   time.Time      `json:"expires"`
	Principal model.Identity `json:"principal"`
}

// RegisterCustomer handles POST /register.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	return h.register(c, model.RoleCustomer, "user")
}

// RegisterProfessional handles POST /register_professionals.
func (h *AuthHandler) RegisterProfessional(c echo.Context) error {
	return h.register(c, model.RoleProfessional, "professional")
}

func (h *AuthHandler) register(c echo.Context, role, key string) error {
	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Creds.Register(ctx, role, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{key: id})
}

// LoginCustomer handles POST /login.
func (h *AuthHandler) LoginCustomer(c echo.Context) error {
	return h.login(c, model.RoleCustomer)
}

// LoginProfessional handles POST /login_professional.
func (h *AuthHandler) LoginProfessional(c echo.Context) error {
	return h.login(c, model.RoleProfessional)
}

func (h *AuthHandler) login(c echo.Context, role string) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Creds.VerifyCredentials(ctx, role, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	tok, err := h.Tokens.Issue(id.ID, id.Role)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token, Expires: tok.Exp, Principal: id})
}

// ChangePassword handles POST /change_password and
// /change_password_professional; the role comes from the token.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	var req service.PasswordChange
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Creds.ChangePassword(ctx, p.Role, p.ID, req); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Logout revokes the token the request was made with.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, p); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's public identity.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Creds.Identity(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, id)
}
