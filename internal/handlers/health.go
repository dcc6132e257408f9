package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wardlink/wardlink-backend/internal/session"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Sessions *session.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, sessions *session.Store) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Sessions: sessions,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "OK",
		"service":  "WardLink USSD Backend",
		"version":  h.Version,
		"sessions": h.Sessions.GetStats(),
	})
}
