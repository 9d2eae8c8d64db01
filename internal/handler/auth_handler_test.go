package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/handler"
	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/internal/service"
	"github.com/noah-isme/gema-review-api/internal/session"
)

func newAuthApp(t *testing.T, sessions session.Store, protect fiber.Handler) *fiber.App {
	t.Helper()
	users := &fixedUsers{users: []models.User{{Username: "carol", PasswordHash: service.HashPassword("pw"), Role: models.RoleStudent}}}
	svc := service.NewAuthService(users, sessions, validator.New(), service.AuthConfig{Secret: "secret"}, zerolog.Nop())

	app := fiber.New()
	handler.NewAuthHandler(svc, 5, zerolog.New(io.Discard)).Register(app.Group("/api/v1/auth"), protect, nil)
	return app
}

type fixedUsers struct {
	users []models.User
}

func (f *fixedUsers) List(context.Context) ([]models.User, error) { return f.users, nil }

func (f *fixedUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fixedUsers) Append(context.Context, *models.User) error { return nil }

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func TestAuthHandlerLogin(t *testing.T) {
	app := newAuthApp(t, session.NewMemoryStore(0), nil)

	resp, err := app.Test(postJSON("/api/v1/auth/login", `{"username":"carol","password":"pw"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.True(t, payload.Success)
	require.Contains(t, string(payload.Data), `"token"`)
	require.Contains(t, string(payload.Data), `"remaining":5`)
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	app := newAuthApp(t, session.NewMemoryStore(0), nil)

	resp, err := app.Test(postJSON("/api/v1/auth/login", `{"username":"carol","password":"wrong"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid username or password", decodeEnvelope(t, resp).Message)

	resp, err = app.Test(postJSON("/api/v1/auth/login", `{"username":"","password":""}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(decodeEnvelope(t, resp).Details), "username")

	resp, err = app.Test(postJSON("/api/v1/auth/login", `{`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerMeAndLogout(t *testing.T) {
	store := session.NewMemoryStore(0)
	sess := models.Session{ID: "s-dan", Username: "dan", Role: models.RoleStudent, LoggedIn: true, DailyUsage: 2}
	require.NoError(t, store.Create(context.Background(), sess))
	app := newAuthApp(t, store, withSession(sess))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var info dto.SessionInfo
	decodeData(t, resp, &info)
	require.Equal(t, "dan", info.Username)
	require.Equal(t, 3, info.Remaining)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = store.Get(context.Background(), "s-dan")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}
