package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/access"
	"github.com/lab-portal/backend/internal/auth"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/testutil"
)

// fixture bundles a handler with the fakes behind it.
type fixture struct {
	handler    *Handler
	store      *testutil.MockStore
	agent      *testutil.MockAgent
	mailer     *testutil.MockMailer
	uploader   *testutil.MockUploader
	authorizer *testutil.MockAuthorizer
	auth       *auth.Manager
	handshake  *auth.Handshaker
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mockStore := testutil.NewMockStore()
	mockAgent := &testutil.MockAgent{}
	mailer := &testutil.MockMailer{}
	uploader := &testutil.MockUploader{}
	authorizer := &testutil.MockAuthorizer{}

	svc := access.NewService(access.Config{
		Store:      mockStore,
		Uploader:   uploader,
		Mailer:     mailer,
		Authorizer: authorizer,
		AdminName:  "Admin",
		AdminEmail: "admin@example.com",
		Seed:       1,
	})
	authMgr := auth.NewManager(mockStore, time.Hour)
	handshaker := auth.NewHandshaker(200 * time.Millisecond)

	h := NewHandler(Dependencies{
		Store:     mockStore,
		Agent:     mockAgent,
		Access:    svc,
		Auth:      authMgr,
		Handshake: handshaker,
		AgentZone: time.UTC,
	})

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // a Monday
	h.now = func() time.Time { return now }

	return &fixture{
		handler:    h,
		store:      mockStore,
		agent:      mockAgent,
		mailer:     mailer,
		uploader:   uploader,
		authorizer: authorizer,
		auth:       authMgr,
		handshake:  handshaker,
		now:        now,
	}
}

// request builds an echo context for a direct handler invocation.
func request(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(r, rec), rec
}

// asUser stores an authenticated user on the context, standing in for
// the auth middleware.
func asUser(c echo.Context, u *models.User) {
	c.Set(currentUserKey, u)
}

func adminUser() *models.User {
	return &models.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Type: models.UserTypeAdmin}
}

func memberUser() *models.User {
	return &models.User{ID: "member-1", Name: "Alice", Email: "alice@example.com", Type: models.UserTypeMember, IP: "10.144.172.10"}
}
