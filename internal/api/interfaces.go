package api

import (
	"context"

	"github.com/lab-portal/backend/internal/models"
)

// AgentClient is the subset of the agent HTTP client the handlers use.
type AgentClient interface {
	Stats(ctx context.Context, file string) (*models.ServerTelemetry, error)
	CommandLog(ctx context.Context) (string, error)
	Sessions(ctx context.Context) ([]models.SessionEntry, error)
	AccessTable(ctx context.Context) (models.AccessTable, error)
}
