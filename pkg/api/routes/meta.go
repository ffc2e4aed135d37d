package routes

import (
	"github.com/gofiber/fiber/v2"
)

func MetaRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/modes", func(c *fiber.Ctx) error { return getModes(c, deps) })
	router.Get("/lines/:mode", func(c *fiber.Ctx) error { return getLines(c, deps) })
	router.Get("/stations/:lineId", func(c *fiber.Ctx) error { return getStationsOnLine(c, deps) })
	router.Get("/routes/:lineId", func(c *fiber.Ctx) error { return getLineRoute(c, deps) })
}

func getModes(c *fiber.Ctx, deps *Dependencies) error {
	modes, err := deps.Meta.GetModes(c.Context())
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(modes)
}

func getLines(c *fiber.Ctx, deps *Dependencies) error {
	lines, err := deps.Meta.GetLines(c.Context(), c.Params("mode"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(lines)
}

func getStationsOnLine(c *fiber.Ctx, deps *Dependencies) error {
	stations, err := deps.Meta.GetStationsOnLine(c.Context(), c.Params("lineId"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(stations)
}

func getLineRoute(c *fiber.Ctx, deps *Dependencies) error {
	route, err := deps.Meta.GetLineRoute(c.Context(), c.Params("lineId"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if route == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find route for line",
		})
	}

	return c.JSON(route)
}
