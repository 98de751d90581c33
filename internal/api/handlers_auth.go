package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/auth"
)

// HandleLogin verifies credentials and issues a session token.
func (h *Handler) HandleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Email == "" || req.Password == "" {
		return NewValidationError("email and password")
	}

	session, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return NewUnauthorizedError("invalid email or password")
		}
		return NewInternalError("login failed", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      user,
	})
}

// HandleLogout discards the caller's session.
func (h *Handler) HandleLogout(c echo.Context) error {
	h.auth.Logout(bearerToken(c))
	return c.NoContent(http.StatusNoContent)
}

// HandleMe returns the authenticated user's record.
func (h *Handler) HandleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentUser(c))
}

// HandleHandshakeBegin opens a login handshake and returns its id.
// The caller then blocks on the await endpoint while a browser session
// completes the handshake with a freshly issued token.
func (h *Handler) HandleHandshakeBegin(c echo.Context) error {
	id := h.handshake.Begin()
	return c.JSON(http.StatusCreated, map[string]string{"handshakeId": id})
}

// HandleHandshakeAwait blocks until the handshake resolves and returns
// the token. Expires with a 408 after the handshake timeout.
func (h *Handler) HandleHandshakeAwait(c echo.Context) error {
	id := c.Param("id")

	token, err := h.handshake.Await(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrHandshakeTimeout):
			return NewTimeoutError("login handshake expired")
		case errors.Is(err, auth.ErrHandshakeNotFound):
			return NewNotFoundError("handshake", id)
		default:
			return NewUnauthorizedError(err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// HandleHandshakeComplete resolves a pending handshake with a valid
// session token.
func (h *Handler) HandleHandshakeComplete(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Token == "" {
		return NewValidationError("token")
	}

	if _, err := h.auth.Resolve(c.Request().Context(), req.Token); err != nil {
		return NewUnauthorizedError("invalid or expired session")
	}

	if err := h.handshake.Complete(id, req.Token); err != nil {
		return NewNotFoundError("handshake", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
}
