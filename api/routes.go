package api

import (
	"errors"

	"insyn-search/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewApp builds the fiber app with middleware and routes registered.
func NewApp(h *Handler, logger *zap.Logger, corsOrigins string) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "insyn-search",
		UnescapePath:          true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	middleware.InitRequests(app, logger)
	middleware.InitCors(app, corsOrigins)
	InitRoutes(app, h)

	return app
}

func InitRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)

	// Legacy paths, kept for existing callers.
	app.Get("/getrecords/:company/:startDate/:endDate", h.GetRecords)
	app.Get("/search/:keyword", h.SearchKeyword)

	api := app.Group("/api/v1")
	api.Get("/records/:company", h.Records)
	api.Get("/search", h.Search)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
