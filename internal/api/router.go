// internal/api/router.go
package api

import (
	"github.com/Kathan1010/LoanAdviser/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouterConfig carries the transport limits taken from server config.
type RouterConfig struct {
	BodyLimit  int
	AccessLogs bool
}

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	eligibilityHandler *handlers.EligibilityHandler,
	healthHandler *handlers.HealthHandler,
	cfg RouterConfig,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "loan-adviser",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	if cfg.AccessLogs {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", healthHandler.Check)

	v1 := app.Group("/api/v1")
	v1.Post("/chat", chatHandler.Chat)
	v1.Post("/eligibility/check", eligibilityHandler.Check)

	return app
}
