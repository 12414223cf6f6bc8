// Package http expone la API REST sobre Fiber: importación de ventas POS,
// auditoría por lote y analítica de inventario.
package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/retail-analytics/internal/application/analytics"
	"github.com/tu-usuario/retail-analytics/internal/application/importer"
)

// Pinger verificación de dependencias para el health check. Nil = sin chequeo.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ImportUC    *importer.ImportUseCase
	AnalyticsUC *analytics.UseCase
	DB          Pinger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.DB))

	api := app.Group("/api")

	// Importación de ventas POS
	imports := api.Group("/imports")
	importHandler := NewImportHandler(deps.ImportUC)
	imports.Post("/", importHandler.Import)
	imports.Get("/:batch_id/deductions", importHandler.GetBatchDeductions)

	// Analítica de inventario
	analyticsGroup := api.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	analyticsGroup.Post("/eoq", analyticsHandler.CalculateEOQ)
	analyticsGroup.Get("/eoq-results", analyticsHandler.ListEOQResults)
	analyticsGroup.Post("/holding-cost", analyticsHandler.HoldingCost)
	analyticsGroup.Post("/ordering-cost", analyticsHandler.OrderingCost)
	analyticsGroup.Post("/forecast", analyticsHandler.Forecast)
	analyticsGroup.Post("/abc", analyticsHandler.ClassifyABC)
	analyticsGroup.Get("/inventory-health", analyticsHandler.InventoryHealth)
}

func healthHandler(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok"}
		if db != nil {
			if err := db.Ping(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "degraded",
					"db":     err.Error(),
				})
			}
			status["db"] = "ok"
		}
		return c.JSON(status)
	}
}
