package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/access"
	"github.com/lab-portal/backend/internal/auth"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/store"
	"github.com/lab-portal/backend/internal/telemetry"
)

// currentUserKey is the echo context key the auth middleware stores the
// resolved user under.
const currentUserKey = "portal.user"

// Handler handles API requests.
type Handler struct {
	store     store.UserStore
	agent     AgentClient
	poller    *telemetry.Poller
	access    *access.Service
	auth      *auth.Manager
	handshake *auth.Handshaker

	statsFile string
	agentZone *time.Location

	// now is swappable for tests.
	now func() time.Time
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Store     store.UserStore
	Agent     AgentClient
	Poller    *telemetry.Poller
	Access    *access.Service
	Auth      *auth.Manager
	Handshake *auth.Handshaker
	// StatsFile selects a non-default monitored server; empty for the default.
	StatsFile string
	// AgentZone is the timezone the agent stamps telemetry in.
	AgentZone *time.Location
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies) *Handler {
	zone := deps.AgentZone
	if zone == nil {
		zone = time.UTC
	}
	return &Handler{
		store:     deps.Store,
		agent:     deps.Agent,
		poller:    deps.Poller,
		access:    deps.Access,
		auth:      deps.Auth,
		handshake: deps.Handshake,
		statsFile: deps.StatsFile,
		agentZone: zone,
		now:       time.Now,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// RequireAuth resolves the bearer token and stores the user in the
// request context.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return NewUnauthorizedError("missing auth token")
		}
		user, err := h.auth.Resolve(c.Request().Context(), token)
		if err != nil {
			return NewUnauthorizedError("invalid or expired session")
		}
		c.Set(currentUserKey, user)
		return next(c)
	}
}

// RequireAdmin rejects non-admin callers. Must run after RequireAuth.
func (h *Handler) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return NewUnauthorizedError("missing auth token")
		}
		if user.Type != models.UserTypeAdmin {
			return NewForbiddenError("administrator access required")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Request().Header.Get("X-Auth-Token")
}
