package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/wardlink/wardlink-backend/internal/handlers"
	"github.com/wardlink/wardlink-backend/internal/middleware"
	"github.com/wardlink/wardlink-backend/internal/session"
	"github.com/wardlink/wardlink-backend/internal/ussd"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, engine *ussd.Engine, sessions *session.Store, version string) {
	ussdHandler := handlers.NewUSSDHandler(engine)
	healthHandler := handlers.NewHealthHandler(version, sessions)

	app.Get("/health", healthHandler.Check)

	// ========== GATEWAY WEBHOOK ==========
	// Development: skip the shared-secret check for local gateways/ngrok
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_GATEWAY_AUTH") == "true" {
		app.Post("/ussd", ussdHandler.HandleGateway)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  USSD gateway secret validation DISABLED for development")
		}
	} else {
		app.Post("/ussd", middleware.ValidateGatewaySecret(), ussdHandler.HandleGateway)
	}

	// ========== TEST ROUTES (Development Only) ==========
	app.Post("/test/ussd", ussdHandler.HandleTest)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin")
	admin.Get("/sessions", func(c *fiber.Ctx) error {
		return c.JSON(sessions.GetStats())
	})
}
