// Package testutil provides in-memory fakes for handler and workflow tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/store"
)

// MockStore implements store.UserStore in memory.
type MockStore struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	hashes map[string][]byte

	// FailWith, when set, is returned by every method.
	FailWith error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:  make(map[string]*models.User),
		hashes: make(map[string][]byte),
	}
}

// Seed inserts users without error handling, for test setup.
func (m *MockStore) Seed(users ...models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
}

func (m *MockStore) List(ctx context.Context) ([]models.User, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*models.User, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) Create(ctx context.Context, user *models.User) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *user
	if copied.Type == "" {
		copied.Type = models.UserTypeMember
	}
	m.users[copied.ID] = &copied
	return nil
}

func (m *MockStore) mutate(id string, fn func(*models.User)) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *MockStore) SetZerotierID(ctx context.Context, id, zerotierID string) error {
	return m.mutate(id, func(u *models.User) { u.ZerotierID = zerotierID })
}

func (m *MockStore) ClearZerotierID(ctx context.Context, id string) error {
	return m.mutate(id, func(u *models.User) { u.ZerotierID = "" })
}

func (m *MockStore) GrantAccess(ctx context.Context, id, ip, serverCode, sshFolder string) error {
	return m.mutate(id, func(u *models.User) {
		u.IP = ip
		u.ServerCode = serverCode
		u.SSHFolder = sshFolder
	})
}

func (m *MockStore) RevokeAccess(ctx context.Context, id string) error {
	return m.mutate(id, func(u *models.User) {
		u.IP = ""
		u.ServerCode = ""
	})
}

func (m *MockStore) SetResilio(ctx context.Context, id, link string) error {
	return m.mutate(id, func(u *models.User) { u.Resilio = link })
}

func (m *MockStore) ClearResilio(ctx context.Context, id string) error {
	return m.mutate(id, func(u *models.User) { u.Resilio = "" })
}

func (m *MockStore) SetServerStorage(ctx context.Context, id string, megabytes int64) error {
	return m.mutate(id, func(u *models.User) { u.ServerStorage = megabytes })
}

func (m *MockStore) AccessCodes(ctx context.Context) (models.AccessTable, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	table := make(models.AccessTable)
	for _, u := range m.users {
		if u.ServerCode != "" && u.IP != "" {
			table[u.ServerCode] = models.AccessRecord{
				Name:      u.Name,
				IP:        u.IP,
				SSHFolder: u.SSHFolder,
			}
		}
	}
	return table, nil
}

func (m *MockStore) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return m.mutate(id, func(u *models.User) {
		m.hashes[u.Email] = hash
	})
}

func (m *MockStore) PasswordHash(ctx context.Context, email string) ([]byte, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, ok := m.hashes[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return hash, nil
}

func (m *MockStore) Close() error { return nil }
