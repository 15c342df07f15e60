package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/receiving"
	"github.com/jhoicas/Inventario-ledger/internal/application/transfer"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock     *inventory.StockUseCase
	Ledger    *inventory.Ledger
	Expiry    *inventory.ExpiryReport
	Receiving *receiving.UseCase
	Transfer  *transfer.UseCase
	Audit     *audit.UseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Todo /api requiere Bearer Token; los clientes finales no operan el inventario directamente.
	api := app.Group("/api",
		AuthMiddleware(deps.JWTSecret),
		RequireActorType(entity.ActorTypeEmployee, entity.ActorTypeSeller, entity.ActorTypeSystem),
	)

	// Stock
	invHandler := NewInventoryHandler(deps.Stock, deps.Ledger, deps.Expiry)
	stock := api.Group("/stock")
	stock.Get("/locations/:kind/:id", invHandler.StockInLocation)
	stock.Get("/locations/:kind/:id/expiring", invHandler.ExpiringStock)
	stock.Get("/batches/:id/locations/:kind/:locationId", invHandler.BatchInLocation)
	stock.Post("/reservations",
		RequireActorType(entity.ActorTypeSystem, entity.ActorTypeSeller),
		invHandler.RecordReservation,
	)

	// Movements (solo lectura)
	movements := api.Group("/movements")
	movements.Get("/", invHandler.ListMovements)
	movements.Get("/summary", invHandler.MovementSummary)
	movements.Get("/batch/:id", invHandler.MovementsByBatch)
	movements.Get("/document/:type/:id", invHandler.MovementsByDocument)
	movements.Get("/:id", invHandler.GetMovement)

	// Receivings
	recHandler := NewReceivingHandler(deps.Receiving)
	receivings := api.Group("/receivings")
	receivings.Post("/numbers", recHandler.GenerateNumber)
	receivings.Post("/", recHandler.Create)
	receivings.Get("/", recHandler.List)
	receivings.Get("/:id", recHandler.Get)
	receivings.Post("/:id/items", recHandler.AddItem)
	receivings.Put("/:id/items/:index", recHandler.UpdateItem)
	receivings.Delete("/:id/items/:index", recHandler.RemoveItem)
	receivings.Patch("/:id/items/:index/actual", recHandler.UpdateActualQuantity)
	receivings.Post("/:id/confirm", recHandler.Confirm)
	receivings.Post("/:id/cancel", recHandler.Cancel)

	// Transfers
	trHandler := NewTransferHandler(deps.Transfer)
	transfers := api.Group("/transfers")
	transfers.Post("/numbers", trHandler.GenerateNumber)
	transfers.Post("/", trHandler.Create)
	transfers.Get("/", trHandler.List)
	transfers.Get("/:id", trHandler.Get)
	transfers.Post("/:id/items", trHandler.AddItem)
	transfers.Put("/:id/items/:index", trHandler.UpdateItem)
	transfers.Delete("/:id/items/:index", trHandler.RemoveItem)
	transfers.Post("/:id/send", trHandler.Send)
	transfers.Post("/:id/receive", trHandler.Receive)
	transfers.Post("/:id/cancel", trHandler.Cancel)

	// Audits
	audHandler := NewAuditHandler(deps.Audit)
	audits := api.Group("/audits")
	audits.Post("/numbers", audHandler.GenerateNumber)
	audits.Post("/", audHandler.Create)
	audits.Get("/", audHandler.List)
	audits.Get("/:id", audHandler.Get)
	audits.Post("/:id/start", audHandler.Start)
	audits.Post("/:id/items/:index/count", audHandler.CountItem)
	audits.Post("/:id/bulk-count", audHandler.BulkCount)
	audits.Post("/:id/items/:index/skip", audHandler.SkipItem)
	audits.Post("/:id/recompute", audHandler.Recompute)
	audits.Post("/:id/complete", audHandler.Complete)
	audits.Post("/:id/apply",
		RequireActorType(entity.ActorTypeEmployee, entity.ActorTypeSeller),
		audHandler.ApplyCorrections,
	)
	audits.Post("/:id/cancel", audHandler.Cancel)
}
