package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/session"
	"github.com/noah-isme/gema-review-api/internal/utils"
)

const sessionLocalsKey = "session"

// JWTProtected returns a middleware that validates JWT bearer tokens and loads the session they point to.
func JWTProtected(secret string, sessions session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		sessionID := stringClaim(claims, "sid")
		if sessionID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		sess, err := sessions.Get(c.UserContext(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired, please log in again")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load session")
		}
		if !sess.LoggedIn || sess.Username != stringClaim(claims, "sub") {
			return utils.SendError(c, fiber.StatusUnauthorized, "session expired, please log in again")
		}

		c.Locals("user_id", sess.Username)
		c.Locals("user_role", models.NormalizeRole(sess.Role))
		c.Locals("session_id", sess.ID)
		c.Locals(sessionLocalsKey, sess)

		return c.Next()
	}
}

// SessionFromContext returns the session loaded by JWTProtected.
func SessionFromContext(c *fiber.Ctx) (models.Session, bool) {
	if c == nil {
		return models.Session{}, false
	}
	sess, ok := c.Locals(sessionLocalsKey).(models.Session)
	return sess, ok
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
