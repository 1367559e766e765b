package routers

import (
	"fmt"

	handlersModule "kevscope/internal/handlers"
	ingestorModule "kevscope/internal/ingestor"
	envsModule "kevscope/pkg/envs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Router struct {
	Envs    *envsModule.Envs
	Handler *handlersModule.Handler
}

func Initial(envs *envsModule.Envs, logger *zap.Logger, ingestor *ingestorModule.Ingestor) *Router {
	return &Router{
		Envs:    envs,
		Handler: handlersModule.Initial(ingestor, logger),
	}
}

func (r *Router) SetupRouters(app *fiber.App) error {
	// Checking whether the service is up or not
	app.Get("/", func(c *fiber.Ctx) error {
		err := c.SendString("Service is up and running!")
		return err
	})

	// Adding /api as a prefix for endpoints
	api := app.Group("/api")

	api.Get("/vulnerabilities", r.Handler.VulnerabilitiesHandler())
	api.Get("/vulnerabilities/table", r.Handler.TableHandler())
	api.Get("/metrics", r.Handler.MetricsHandler())
	api.Post("/refresh", r.Handler.RefreshHandler())

	// 404 - Not Found error handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not Found!")
	})

	return app.Listen(fmt.Sprintf(":%s", r.Envs.HTTP_PORT))
}
