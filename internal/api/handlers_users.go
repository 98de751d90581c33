package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/access"
	"github.com/lab-portal/backend/internal/auth"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/store"
)

// HandleListUsers returns every user record.
func (h *Handler) HandleListUsers(c echo.Context) error {
	users, err := h.store.List(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list users", err)
	}
	return c.JSON(http.StatusOK, users)
}

// HandleGetUser returns one user. Members can only fetch themselves.
func (h *Handler) HandleGetUser(c echo.Context) error {
	id := c.Param("id")
	caller := CurrentUser(c)
	if caller.Type != models.UserTypeAdmin && caller.ID != id {
		return NewForbiddenError("cannot view other users")
	}

	user, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to fetch user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// HandleCreateUser registers a new user with a login password.
func (h *Handler) HandleCreateUser(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Type     string `json:"type"`
		Group    string `json:"group"`
		Lab      string `json:"lab"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return NewValidationError("name, email and password")
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetByEmail(ctx, req.Email); err == nil {
		return NewConflictError("email already registered")
	}

	userType := models.UserTypeMember
	if req.Type == string(models.UserTypeAdmin) {
		userType = models.UserTypeAdmin
	}
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		Type:  userType,
		Group: req.Group,
		Lab:   req.Lab,
	}
	if err := h.store.Create(ctx, user); err != nil {
		return NewInternalError("failed to create user", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return NewInternalError("failed to hash password", err)
	}
	if err := h.store.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return NewInternalError("failed to store password", err)
	}

	return c.JSON(http.StatusCreated, user)
}

// HandleAccessRequest files an access request for the caller.
func (h *Handler) HandleAccessRequest(c echo.Context) error {
	var req struct {
		ZerotierID string `json:"zerotierId"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.ZerotierID == "" {
		return NewValidationError("zerotierId")
	}

	caller := CurrentUser(c)
	if err := h.access.Request(c.Request().Context(), caller.ID, req.ZerotierID); err != nil {
		if errors.Is(err, access.ErrAlreadyRequested) {
			return NewConflictError("access already requested")
		}
		return NewInternalError("failed to file access request", err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "requested"})
}

// HandleSuggestCredentials proposes the next free address and an
// unused access code for the approval form.
func (h *Handler) HandleSuggestCredentials(c echo.Context) error {
	ip, code, err := h.access.SuggestCredentials(c.Request().Context())
	if err != nil {
		if errors.Is(err, access.ErrSubnetExhausted) {
			return NewConflictError("no free addresses left in the member subnet")
		}
		return NewInternalError("failed to suggest credentials", err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"ip":         ip,
		"serverCode": code,
	})
}

type credentialsRequest struct {
	IP         string `json:"ip"`
	ServerCode string `json:"serverCode"`
	SSHFolder  string `json:"sshFolder"`
}

// HandleApproveAccess grants credentials to a pending request.
func (h *Handler) HandleApproveAccess(c echo.Context) error {
	id := c.Param("id")
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.IP == "" || req.ServerCode == "" || req.SSHFolder == "" {
		return NewValidationError("ip, serverCode and sshFolder")
	}

	if err := h.access.Approve(c.Request().Context(), id, req.IP, req.ServerCode, req.SSHFolder); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to approve access", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "approved"})
}

// HandleRejectAccess declines a pending request.
func (h *Handler) HandleRejectAccess(c echo.Context) error {
	id := c.Param("id")
	if err := h.access.Reject(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to reject access", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "rejected"})
}

// HandleRevokeAccess withdraws previously granted credentials.
func (h *Handler) HandleRevokeAccess(c echo.Context) error {
	id := c.Param("id")
	if err := h.access.Revoke(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to revoke access", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "revoked"})
}

// HandleUpdateAccess rewrites a user's credentials in place, without
// the notification flow of an approval.
func (h *Handler) HandleUpdateAccess(c echo.Context) error {
	id := c.Param("id")
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.IP == "" || req.ServerCode == "" || req.SSHFolder == "" {
		return NewValidationError("ip, serverCode and sshFolder")
	}

	if err := h.access.Update(c.Request().Context(), id, req.IP, req.ServerCode, req.SSHFolder); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to update access", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// HandleSetResilio attaches a sync share link to a user.
func (h *Handler) HandleSetResilio(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Link string `json:"link"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Link == "" {
		return NewValidationError("link")
	}

	if err := h.store.SetResilio(c.Request().Context(), id, req.Link); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to set sync link", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// HandleClearResilio removes a user's sync share link.
func (h *Handler) HandleClearResilio(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.ClearResilio(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("user", id)
		}
		return NewInternalError("failed to clear sync link", err)
	}
	return c.NoContent(http.StatusNoContent)
}
