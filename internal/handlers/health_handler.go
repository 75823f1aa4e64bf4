package handlers

import "github.com/gofiber/fiber/v2"

// HandleHealth handles GET /health and GET /api/health
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
