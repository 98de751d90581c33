// Package store persists the users collection in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/lab-portal/backend/internal/models"
)

// ErrNotFound is returned for lookups of unknown users.
var ErrNotFound = errors.New("user not found")

// UserStore defines the operations the portal needs from the users
// collection: full scans for admin views, point lookups for
// self-service views, and field-level updates for the access workflow.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error

	// SetZerotierID records a pending access request.
	SetZerotierID(ctx context.Context, id, zerotierID string) error
	// ClearZerotierID removes the request marker (reject).
	ClearZerotierID(ctx context.Context, id string) error
	// GrantAccess sets the credential fields (approve / edit).
	GrantAccess(ctx context.Context, id, ip, serverCode, sshFolder string) error
	// RevokeAccess clears ip and serverCode, leaving the rest intact.
	RevokeAccess(ctx context.Context, id string) error

	SetResilio(ctx context.Context, id, link string) error
	ClearResilio(ctx context.Context, id string) error
	SetServerStorage(ctx context.Context, id string, megabytes int64) error

	// AccessCodes exports the authoritative access-code table: one
	// entry per user holding both a code and an address.
	AccessCodes(ctx context.Context) (models.AccessTable, error)

	SetPasswordHash(ctx context.Context, id string, hash []byte) error
	PasswordHash(ctx context.Context, email string) ([]byte, error)

	Close() error
}
