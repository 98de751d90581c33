package store

import (
	"context"
	"testing"

	"github.com/lab-portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, u models.User) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &u))
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, models.User{ID: "u1", Name: "Alice", Email: "alice@lab.org", Lab: "spintronics"})

	u, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, models.UserTypeMember, u.Type)
	assert.Equal(t, "spintronics", u.Lab)

	byEmail, err := s.GetByEmail(ctx, "alice@lab.org")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByEmail(context.Background(), "nobody@lab.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListOrdersByName(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, models.User{ID: "u1", Name: "Charlie", Email: "c@lab.org"})
	seedUser(t, s, models.User{ID: "u2", Name: "Alice", Email: "a@lab.org"})
	seedUser(t, s, models.User{ID: "u3", Name: "Bob", Email: "b@lab.org"})

	users, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
	assert.Equal(t, "Charlie", users[2].Name)
}

func TestSQLiteStore_AccessWorkflowFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, models.User{ID: "u1", Name: "Alice", Email: "a@lab.org"})

	// Request: zerotier id recorded, no ip yet.
	require.NoError(t, s.SetZerotierID(ctx, "u1", "ztabc123"))
	u, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.PendingRequest())

	// Approve: credentials set.
	require.NoError(t, s.GrantAccess(ctx, "u1", "10.144.172.10", "1234", "alice"))
	u, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.HasAccess())
	assert.False(t, u.PendingRequest())
	assert.Equal(t, "1234", u.ServerCode)

	// Revoke: ip and code cleared, ssh folder kept.
	require.NoError(t, s.RevokeAccess(ctx, "u1"))
	u, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.HasAccess())
	assert.Empty(t, u.IP)
	assert.Empty(t, u.ServerCode)
	assert.Equal(t, "alice", u.SSHFolder)
	assert.Equal(t, "ztabc123", u.ZerotierID)

	// Reject path clears the request marker.
	require.NoError(t, s.ClearZerotierID(ctx, "u1"))
	u, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.ZerotierID)
}

func TestSQLiteStore_FieldUpdatesOnMissingUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SetZerotierID(ctx, "missing", "zt"), ErrNotFound)
	assert.ErrorIs(t, s.GrantAccess(ctx, "missing", "ip", "code", "folder"), ErrNotFound)
	assert.ErrorIs(t, s.RevokeAccess(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, s.SetResilio(ctx, "missing", "link"), ErrNotFound)
}

func TestSQLiteStore_Resilio(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, models.User{ID: "u1", Name: "Alice", Email: "a@lab.org"})

	require.NoError(t, s.SetResilio(ctx, "u1", "https://link.resilio.com/#f=abc"))
	u, _ := s.Get(ctx, "u1")
	assert.NotEmpty(t, u.Resilio)

	require.NoError(t, s.ClearResilio(ctx, "u1"))
	u, _ = s.Get(ctx, "u1")
	assert.Empty(t, u.Resilio)
}

func TestSQLiteStore_AccessCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, models.User{ID: "u1", Name: "Alice", Email: "a@lab.org",
		IP: "10.144.172.10", ServerCode: "1234", SSHFolder: "alice"})
	seedUser(t, s, models.User{ID: "u2", Name: "Bob", Email: "b@lab.org",
		ServerCode: "5678"}) // no ip: excluded
	seedUser(t, s, models.User{ID: "u3", Name: "Carol", Email: "c@lab.org",
		IP: "10.144.172.12"}) // no code: excluded

	table, err := s.AccessCodes(ctx)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, models.AccessRecord{Name: "Alice", IP: "10.144.172.10", SSHFolder: "alice"}, table["1234"])
}

func TestSQLiteStore_PasswordHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, models.User{ID: "u1", Name: "Alice", Email: "a@lab.org"})
	require.NoError(t, s.SetPasswordHash(ctx, "u1", []byte("hash")))

	hash, err := s.PasswordHash(ctx, "a@lab.org")
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), hash)

	_, err = s.PasswordHash(ctx, "nobody@lab.org")
	assert.ErrorIs(t, err, ErrNotFound)
}
