// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler, wsh *WebSocketHandler) {
	e.HTTPErrorHandler = ErrorHandler

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", h.HandleHealth)

	// Login and the CLI handshake
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/login", h.HandleLogin)
	authGroup.POST("/logout", h.HandleLogout, h.RequireAuth)
	authGroup.GET("/me", h.HandleMe, h.RequireAuth)
	authGroup.POST("/handshake", h.HandleHandshakeBegin)
	authGroup.GET("/handshake/:id", h.HandleHandshakeAwait)
	authGroup.POST("/handshake/:id/complete", h.HandleHandshakeComplete)

	// Server overview and live telemetry push
	apiGroup.GET("/overview", h.HandleOverview, h.RequireAuth)
	if wsh != nil {
		apiGroup.GET("/ws/telemetry", wsh.HandleTelemetrySocket)
	}

	// Usage statistics
	apiGroup.GET("/statistics", h.HandleStatistics, h.RequireAuth)

	// Command monitor
	monitorGroup := apiGroup.Group("/monitor", h.RequireAuth)
	monitorGroup.GET("/commands", h.HandleMonitorCommands)
	monitorGroup.GET("/commands/msgpack", h.HandleMonitorCommandsMsgpack)

	// User management
	usersGroup := apiGroup.Group("/users", h.RequireAuth)
	usersGroup.GET("", h.HandleListUsers, h.RequireAdmin)
	usersGroup.POST("", h.HandleCreateUser, h.RequireAdmin)
	usersGroup.GET("/:id", h.HandleGetUser)
	usersGroup.PUT("/:id/resilio", h.HandleSetResilio, h.RequireAdmin)
	usersGroup.DELETE("/:id/resilio", h.HandleClearResilio, h.RequireAdmin)

	// Access workflow
	accessGroup := apiGroup.Group("/access", h.RequireAuth)
	accessGroup.POST("/request", h.HandleAccessRequest)
	accessGroup.GET("/suggest", h.HandleSuggestCredentials, h.RequireAdmin)
	accessGroup.POST("/:id/approve", h.HandleApproveAccess, h.RequireAdmin)
	accessGroup.POST("/:id/reject", h.HandleRejectAccess, h.RequireAdmin)
	accessGroup.POST("/:id/revoke", h.HandleRevokeAccess, h.RequireAdmin)
	accessGroup.POST("/:id/update", h.HandleUpdateAccess, h.RequireAdmin)
}
