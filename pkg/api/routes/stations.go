package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"

	"github.com/stationly/stationly/pkg/indexer"
	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/transform"
)

func StationsRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/search", func(c *fiber.Ctx) error { return searchStations(c, deps) })
	router.Get("/line/:lineId", func(c *fiber.Ctx) error { return getStationsByLine(c, deps) })
	router.Get("/name/:name", func(c *fiber.Ctx) error { return getStationsByName(c) })
	router.Get("/:naptanId/arrivals", func(c *fiber.Ctx) error { return getStationArrivals(c, deps) })
	router.Post("/sync/:lineId", func(c *fiber.Ctx) error { return syncLine(c, deps) })
}

// reduceStations applies the sheriff view groups. Callers get the basic view
// unless they ask for detail.
func reduceStations(c *fiber.Ctx, stations []model.Station) error {
	groups := []string{"basic"}
	if c.QueryBool("detail") {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: groups}, stations)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce stations",
		})
	}

	return c.JSON(reduced)
}

func searchStations(c *fiber.Ctx, deps *Dependencies) error {
	searchKey := c.Query("searchKey")

	if searchKey != "" {
		stations, err := deps.Topology.SearchStations(c.Context(), searchKey)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{"error": err.Error()})
		}

		return reduceStations(c, stations)
	}

	latQuery := c.Query("lat")
	lonQuery := c.Query("lon")
	if latQuery == "" || lonQuery == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Either searchKey or lat/lon must be provided",
		})
	}

	lat, latErr := strconv.ParseFloat(latQuery, 64)
	lon, lonErr := strconv.ParseFloat(lonQuery, 64)
	radius := c.QueryFloat("radius", 1.0)

	if latErr != nil || lonErr != nil || radius <= 0 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "lat, lon and radius must be valid numbers",
		})
	}

	stations, err := deps.Topology.SearchByLocation(c.Context(), lat, lon, radius)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return reduceStations(c, stations)
}

func getStationsByLine(c *fiber.Ctx, deps *Dependencies) error {
	stations, err := deps.Topology.SearchStations(c.Context(), c.Params("lineId"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return reduceStations(c, stations)
}

func getStationsByName(c *fiber.Ctx) error {
	stations, err := indexer.SearchByName(c.Context(), c.Params("name"), c.QueryInt("size", 10))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return reduceStations(c, stations)
}

// getStationArrivals fetches live predictions for one station on demand,
// bypassing the push pipeline. The snapshot has the same shape as the pushed
// payloads.
func getStationArrivals(c *fiber.Ctx, deps *Dependencies) error {
	arrivals, err := deps.Arrivals.ArrivalsForStation(c.Context(), c.Params("naptanId"))
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	for _, station := range transform.Transform(arrivals) {
		return c.JSON(station)
	}

	c.SendStatus(fiber.StatusNotFound)
	return c.JSON(fiber.Map{
		"error": "No current arrivals for station",
	})
}

func syncLine(c *fiber.Ctx, deps *Dependencies) error {
	lineID := c.Params("lineId")
	mode := c.Query("mode")

	if lineID == "" || mode == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Line ID and mode are required",
		})
	}

	summary, err := deps.Topology.SyncLine(c.Context(), lineID, mode)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(summary)
}
