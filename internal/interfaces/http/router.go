package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/auth"
	"github.com/agrocampo/agro-inventario/internal/application/ledger"
	"github.com/agrocampo/agro-inventario/internal/application/lot"
	"github.com/agrocampo/agro-inventario/internal/application/masterdata"
	"github.com/agrocampo/agro-inventario/internal/application/movement"
	"github.com/agrocampo/agro-inventario/internal/application/report"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	MasterDataUC *masterdata.UseCase
	LedgerUC     *ledger.LedgerUseCase
	MovementUC   *movement.Engine
	LotUC        *lot.TrackerUseCase
	ReportUC     *report.UseCase
	PositionRepo repository.PositionRepository
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público: el alta del tenant precede a cualquier login)
	masterHandler := NewMasterDataHandler(deps.MasterDataUC)
	api.Post("/companies", masterHandler.CreateCompany)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Datos maestros (protegido)
	protected.Post("/farms", masterHandler.CreateFarm)
	protected.Get("/farms", masterHandler.ListFarms)
	protected.Post("/sectors", masterHandler.CreateSector)
	protected.Get("/sectors", masterHandler.ListSectors)
	protected.Post("/products", masterHandler.CreateProduct)
	protected.Get("/products", masterHandler.ListProducts)

	// Stock Ledger (protegido; el ajuste directo queda restringido a roles de confianza)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.PositionRepo)
	ledgerGroup.Post("/adjust", RequireRole(entity.RoleAdmin, entity.RoleEncargado), ledgerHandler.Adjust)
	ledgerGroup.Post("/reserve", ledgerHandler.Reserve)
	ledgerGroup.Post("/release", ledgerHandler.Release)
	ledgerGroup.Post("/transfer", ledgerHandler.Transfer)
	ledgerGroup.Get("/positions/:sectorID", ledgerHandler.ListPositions)

	// Movimientos (protegido)
	movGroup := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movGroup.Post("/", movementHandler.Create)
	movGroup.Get("/", movementHandler.List)
	movGroup.Get("/:id", movementHandler.GetByID)
	movGroup.Post("/:id/approve", RequireRole(entity.RoleAdmin, entity.RoleEncargado), movementHandler.Approve)
	movGroup.Post("/:id/confirm", RequireRole(entity.RoleAdmin, entity.RoleEncargado), movementHandler.Confirm)
	movGroup.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleEncargado), movementHandler.Cancel)

	// Lotes (protegido)
	lotGroup := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC)
	lotGroup.Post("/", lotHandler.Create)
	lotGroup.Post("/generate-number", lotHandler.GenerateNumber)
	lotGroup.Post("/:id/consume", lotHandler.MarkConsumed)
	lotGroup.Get("/product/:productID", lotHandler.ListByProduct)

	// Reportes (protegido)
	reportGroup := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reportGroup.Get("/low-stock", reportHandler.LowStock)
	reportGroup.Get("/expiring-lots", reportHandler.ExpiringLots)
	reportGroup.Get("/sector-summary", reportHandler.SectorSummary)
}
