package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/response"
	"github.com/roamio/tripplanner/internal/token"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// Protected authenticates the request from the Authorization header
// and attaches the decoded identity to the request context. Every
// request is verified independently; no server-side session exists.
func Protected(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "No token provided")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid token format")
		}

		claims, err := tokens.ParseAccess(parts[1])
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole gates a route on the role attached by Protected. A
// missing identity means the guard ran without authentication, which
// fails closed.
func RequireRole(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(models.Role)
		if !ok || !role.Valid() {
			return response.Forbidden(c, "Access denied")
		}

		if role != required {
			return response.Forbidden(c, "Access denied. Admins only!")
		}

		return c.Next()
	}
}

// UserID returns the authenticated subject id set by Protected.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// RoleOf returns the authenticated role set by Protected.
func RoleOf(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(LocalRole).(models.Role)
	return role
}
