package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/congo-pay/banco/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestID resolves the request id from the X-Request-ID header, generating
// one when absent. The id is echoed on the response, stored in locals for the
// access log and attached to the user context so that domain calls log it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDHeader, reqID)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), reqID))

		return c.Next()
	}
}
