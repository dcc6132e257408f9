package handlers

import (
	"log"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wardlink/wardlink-backend/internal/ussd"
)

// Loose MSISDN shape: optional leading +, then 9-15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// USSDHandler handles USSD gateway webhook requests
type USSDHandler struct {
	engine *ussd.Engine
}

// NewUSSDHandler creates a new USSD handler
func NewUSSDHandler(engine *ussd.Engine) *USSDHandler {
	return &USSDHandler{engine: engine}
}

// HandleGateway processes one inbound gateway turn. Providers disagree on
// field names, so everything is normalized here into the one canonical
// request the engine sees.
func (h *USSDHandler) HandleGateway(c *fiber.Ctx) error {
	sessionID := firstFormValue(c, "sessionId", "SessionId", "session_id", "sessionID")
	phone := firstFormValue(c, "phoneNumber", "phone", "msisdn", "Msisdn", "From")
	text := firstFormValue(c, "text", "Text", "ussdString")

	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		log.Printf("⚠️  Rejected gateway request with bad msisdn %q", phone)
		return respond(c, "END Invalid request.")
	}

	if sessionID == "" {
		// Some gateways omit the session id. The composite key is
		// deterministic so retries from the same subscriber land on the
		// same session.
		sessionID = c.IP() + "|" + phone
	}

	reply := h.engine.Handle(ussd.Request{
		SessionID: sessionID,
		Phone:     phone,
		Text:      text,
	})

	return respond(c, reply.Render())
}

// respond always answers 200 with well-formed CON/END framing so the
// gateway never hangs a subscriber.
func respond(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(body)
}

func firstFormValue(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if v := c.FormValue(key); v != "" {
			return v
		}
	}
	return ""
}

// TestPayload is the JSON body accepted by the development endpoint.
type TestPayload struct {
	SessionID string `json:"session_id"`
	Phone     string `json:"phone"`
	Text      string `json:"text"`
}

// HandleTest processes test USSD turns (for development)
func (h *USSDHandler) HandleTest(c *fiber.Ctx) error {
	var payload TestPayload

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test turn from %s: %q", payload.Phone, payload.Text)

	reply := h.engine.Handle(ussd.Request{
		SessionID: payload.SessionID,
		Phone:     payload.Phone,
		Text:      payload.Text,
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"response": reply.Render(),
	})
}
