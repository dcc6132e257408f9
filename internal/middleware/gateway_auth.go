package middleware

import (
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// ValidateGatewaySecret checks the shared secret the USSD gateway is
// configured to send with every webhook call.
func ValidateGatewaySecret() fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-Gateway-Secret")
		if provided == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Missing gateway secret",
			})
		}

		secret := os.Getenv("USSD_GATEWAY_SECRET")
		if secret == "" {
			// Log error but don't expose to client
			fmt.Println("ERROR: USSD_GATEWAY_SECRET not set")
			return c.Status(500).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return c.Status(401).JSON(fiber.Map{
				"error": "Invalid gateway secret",
			})
		}

		return c.Next()
	}
}
