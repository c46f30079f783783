package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SecretAuth guards admin endpoints (bulk sync, manual retry, status) with a
// static bearer secret. Authentication failures are rejected before any
// business logic runs.
func SecretAuth(secret string) fiber.Handler {
	expected := []byte("Bearer " + strings.TrimSpace(secret))

	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(secret) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if subtle.ConstantTimeCompare([]byte(auth), expected) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}
