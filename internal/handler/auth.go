package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	if auth == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth}
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Me returns the caller's user record.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
