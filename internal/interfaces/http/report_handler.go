package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/report"
)

// ReportHandler expone las consultas de solo lectura del inventario.
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock productos bajo su mínimo por sector, ordenados por déficit.
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.uc.LowStock(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "products": rows})
}

// ExpiringLots lotes activos con vencimiento dentro del horizonte (query days).
func (h *ReportHandler) ExpiringLots(c *fiber.Ctx) error {
	rows, err := h.uc.ExpiringLots(c.Context(), GetCompanyID(c), c.QueryInt("days"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "lots": rows})
}

// SectorSummary agregado de inventario por sector (query farm_id opcional).
func (h *ReportHandler) SectorSummary(c *fiber.Ctx) error {
	rows, err := h.uc.SectorSummary(c.Context(), GetCompanyID(c), c.Query("farm_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "sectors": rows})
}
