package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/repository"
	"github.com/stationly/stationly/pkg/transform"
)

func AdminRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/refresh", func(c *fiber.Ctx) error { return adminRefresh(c, deps) })
	router.Get("/status/refresh", func(c *fiber.Ctx) error { return adminStatusRefresh(c, deps) })
	router.Get("/sync", func(c *fiber.Ctx) error { return adminSync(c, deps) })
	router.Get("/cleanup", func(c *fiber.Ctx) error { return adminCleanup(c, deps) })
}

func adminRefresh(c *fiber.Ctx, deps *Dependencies) error {
	log.Info().Msg("Manual refresh triggered for all configured modes")

	summaries := deps.Poller.RefreshAll(c.Context())

	return c.JSON(summaries)
}

func adminStatusRefresh(c *fiber.Ctx, deps *Dependencies) error {
	log.Info().Msg("Manual line status refresh triggered")

	result, err := deps.LineStatus.Sync(c.Context())
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result.Statuses)
}

// adminSync queues one sync job per line of every configured mode instead of
// syncing inline; the consumer fleet picks them up.
func adminSync(c *fiber.Ctx, deps *Dependencies) error {
	total := 0
	for _, mode := range deps.Modes {
		published, err := deps.Topology.EnqueueModeSync(c.Context(), mode)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{"error": err.Error()})
		}
		total += published
	}

	return c.JSON(fiber.Map{
		"queued": total,
	})
}

// adminCleanup flushes every persisted collection and broadcasts a clear
// signal to each known station topic so clients drop their local state.
func adminCleanup(c *fiber.Ctx, deps *Dependencies) error {
	log.Info().Msg("Cleanup requested, flushing persisted data")

	stations, err := repository.Stations().GetAll(c.Context())
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	cleared := 0
	for _, station := range stations {
		topic := transform.StationTopic(station.NaptanID)
		if err := deps.Publisher.SendClearSignal(c.Context(), topic); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to send clear signal")
			continue
		}
		cleared++
	}

	if err := repository.Stations().DeleteAll(c.Context()); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if err := repository.Modes().DeleteAll(c.Context()); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if err := repository.Lines().DeleteAll(c.Context()); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if err := repository.LineRoutes().DeleteAll(c.Context()); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	if err := repository.LineStatuses().DeleteAll(c.Context()); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Cleanup completed, all persisted data flushed",
		"cleared": cleared,
	})
}
