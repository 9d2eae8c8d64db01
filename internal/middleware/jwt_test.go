package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/session"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(store session.Store) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(testSecret, store), func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"username": sess.Username, "role": c.Locals("user_role"), "user_id": c.Locals("user_id")})
	})
	return app
}

func requestWithToken(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedLoadsSession(t *testing.T) {
	store := session.NewMemoryStore(0)
	require.NoError(t, store.Create(context.Background(), models.Session{ID: "s1", Username: "carol", Role: "Teacher", LoggedIn: true}))
	app := newProtectedApp(store)

	token := signToken(t, testSecret, jwt.MapClaims{"sub": "carol", "sid": "s1", "exp": time.Now().Add(time.Hour).Unix()})
	resp := requestWithToken(t, app, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejects(t *testing.T) {
	store := session.NewMemoryStore(0)
	require.NoError(t, store.Create(context.Background(), models.Session{ID: "s1", Username: "carol", Role: models.RoleStudent, LoggedIn: true}))
	app := newProtectedApp(store)

	cases := map[string]string{
		"missing header": "",
		"garbage":        "not-a-token",
		"wrong secret":   signToken(t, "other-secret", jwt.MapClaims{"sub": "carol", "sid": "s1"}),
		"expired":        signToken(t, testSecret, jwt.MapClaims{"sub": "carol", "sid": "s1", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no session id":  signToken(t, testSecret, jwt.MapClaims{"sub": "carol"}),
		"logged out":     signToken(t, testSecret, jwt.MapClaims{"sub": "carol", "sid": "gone"}),
		"subject swap":   signToken(t, testSecret, jwt.MapClaims{"sub": "mallory", "sid": "s1"}),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			resp := requestWithToken(t, app, token)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
