package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/utils"
)

// Roles accepted by AuthOptions.
const (
	AuthRoleAny     = "any"
	AuthRoleTeacher = models.RoleTeacher
	AuthRoleStudent = models.RoleStudent
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth guards a single handler. Naming a role implies RequireUser.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := models.NormalizeRole(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}
	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		username, _ := c.Locals("user_id").(string)
		if requireUser && username == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role != AuthRoleAny {
			current, _ := c.Locals("user_role").(string)
			if models.NormalizeRole(current) != role {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
		}

		return handler(c)
	}
}
