package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stationly/stationly/pkg/api/routes"
)

func SetupServer(listen string, deps *routes.Dependencies) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.StationsRouter(group.Group("/stations"), deps)
	routes.MetaRouter(group.Group("/meta"), deps)
	routes.LineStatusRouter(group.Group("/status"), deps)
	routes.AdminRouter(group.Group("/admin"), deps)

	return webApp.Listen(listen)
}
