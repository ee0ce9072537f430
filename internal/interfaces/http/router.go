package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/ledger"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	LedgerUC  *ledger.UseCase
	ReportUC  *ledger.ReportUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Productos (catálogo)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Motor de inventario (escrituras)
	inv := protected.Group("/inventory")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	inv.Post("/ingest", ledgerHandler.IngestStock)
	inv.Post("/consume", ledgerHandler.ConsumeStock)
	inv.Post("/consume-lines", ledgerHandler.ConsumeStockLines)
	// Ajustes manuales: solo admin y bodeguero
	inv.Post("/adjust", RequireRole("admin", "bodeguero"), ledgerHandler.AdjustStock)

	// Lotes (bajas y vencimientos): solo admin y bodeguero
	lots := protected.Group("/lots", RequireRole("admin", "bodeguero"))
	lots.Post("/:id/write-off", ledgerHandler.WriteOffLot)
	lots.Post("/:id/expire", ledgerHandler.ExpireLot)

	// Reportes (solo lectura)
	reportHandler := NewReportHandler(deps.ReportUC)
	products.Get("/:id/kardex", reportHandler.Kardex)
	products.Get("/:id/lots", reportHandler.Lots)
	products.Get("/:id/reconciliation", reportHandler.VerifyReconciliation)
	inv.Get("/valuation", reportHandler.Valuation)
}
