package testutil

import (
	"context"
	"sync"

	"github.com/lab-portal/backend/internal/models"
)

// SentMail records one dispatched message.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer implements notify.Mailer, recording every send.
type MockMailer struct {
	mu       sync.Mutex
	Sent     []SentMail
	FailWith error
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Messages returns a snapshot of all sends.
func (m *MockMailer) Messages() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.Sent...)
}

// MockAuthorizer implements zerotier.Authorizer.
type MockAuthorizer struct {
	mu           sync.Mutex
	Authorized   []string
	Deauthorized []string
	FailWith     error
}

func (m *MockAuthorizer) Authorize(ctx context.Context, memberID, ip, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Authorized = append(m.Authorized, memberID)
	return nil
}

func (m *MockAuthorizer) Deauthorize(ctx context.Context, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Deauthorized = append(m.Deauthorized, memberID)
	return nil
}

// MockUploader implements access.CodeUploader, keeping the last table.
type MockUploader struct {
	mu       sync.Mutex
	Uploads  []models.AccessTable
	FailWith error
}

func (m *MockUploader) UploadAccessCodes(ctx context.Context, table models.AccessTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Uploads = append(m.Uploads, table)
	return nil
}

// Last returns the most recent upload, or nil.
func (m *MockUploader) Last() models.AccessTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Uploads) == 0 {
		return nil
	}
	return m.Uploads[len(m.Uploads)-1]
}

// MockAgent implements the agent-facing fetches the handlers need.
type MockAgent struct {
	Telemetry   *models.ServerTelemetry
	CommandText string
	SessionLog  []models.SessionEntry
	Access      models.AccessTable

	StatsErr    error
	CommandErr  error
	SessionsErr error
	AccessErr   error
}

func (m *MockAgent) Stats(ctx context.Context, file string) (*models.ServerTelemetry, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	return m.Telemetry, nil
}

func (m *MockAgent) CommandLog(ctx context.Context) (string, error) {
	if m.CommandErr != nil {
		return "", m.CommandErr
	}
	return m.CommandText, nil
}

func (m *MockAgent) Sessions(ctx context.Context) ([]models.SessionEntry, error) {
	if m.SessionsErr != nil {
		return nil, m.SessionsErr
	}
	return m.SessionLog, nil
}

func (m *MockAgent) AccessTable(ctx context.Context) (models.AccessTable, error) {
	if m.AccessErr != nil {
		return nil, m.AccessErr
	}
	return m.Access, nil
}
