package routes

import (
	"github.com/gofiber/fiber/v2"
)

func LineStatusRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/lines", func(c *fiber.Ctx) error { return getLineStatuses(c, deps) })
}

func getLineStatuses(c *fiber.Ctx, deps *Dependencies) error {
	statuses, err := deps.LineStatus.GetStatuses(c.Context(), c.Query("lineId"), c.Query("mode"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(statuses)
}
