package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray id on responses and inbound requests.
const Header = "X-Ray-ID"

// New creates a middleware that assigns every request a unique ray id,
// reusing an inbound one when a proxy already set it. The id lands in
// c.Locals("ray_id") for loggers and in the response header for clients.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
