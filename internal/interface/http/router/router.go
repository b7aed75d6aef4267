package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/football-storefront/internal/interface/http/handler"
)

// Register mounts the JSON endpoints.
func Register(app fiber.Router, cartHandler *handler.CartHandler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/cart/summary", cartHandler.Summary)
}
