package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/application/ledger"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// LedgerHandler expone las operaciones del libro de stock: ajuste, reserva,
// liberación, traslado y lectura de posiciones.
type LedgerHandler struct {
	uc        *ledger.LedgerUseCase
	positions repository.PositionRepository
}

// NewLedgerHandler construye el handler del ledger.
func NewLedgerHandler(uc *ledger.LedgerUseCase, positions repository.PositionRepository) *LedgerHandler {
	return &LedgerHandler{uc: uc, positions: positions}
}

// Adjust fija el on-hand de una posición en un valor absoluto (recuento físico).
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	result, err := h.uc.Adjust(c.Context(), ledger.AdjustInput{
		CompanyID:   GetCompanyID(c),
		ActorID:     GetUserID(c),
		ProductID:   in.ProductID,
		SectorID:    in.SectorID,
		LotID:       in.LotID,
		NewQuantity: in.NewQuantity,
		Reason:      in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AdjustResponse{Previous: result.Previous, New: result.New, Delta: result.Delta})
}

// Reserve aparta cantidad del disponible. 409 si el disponible no alcanza.
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	pos, err := h.uc.Reserve(c.Context(), ledger.ReserveInput{
		CompanyID: GetCompanyID(c),
		ProductID: in.ProductID,
		SectorID:  in.SectorID,
		LotID:     in.LotID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	if pos == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock disponible insuficiente"})
	}
	return c.JSON(dto.ToPositionResponse(pos))
}

// Release libera cantidad reservada (recorta a cero en modo tolerante).
func (h *LedgerHandler) Release(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	pos, err := h.uc.Release(c.Context(), ledger.ReserveInput{
		CompanyID: GetCompanyID(c),
		ProductID: in.ProductID,
		SectorID:  in.SectorID,
		LotID:     in.LotID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPositionResponse(pos))
}

// Transfer traslada cantidad entre sectores conservando el costo de origen.
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	result, err := h.uc.Transfer(c.Context(), ledger.TransferInput{
		CompanyID:      GetCompanyID(c),
		ActorID:        GetUserID(c),
		ProductID:      in.ProductID,
		OriginSectorID: in.OriginSectorID,
		DestSectorID:   in.DestSectorID,
		LotID:          in.LotID,
		Quantity:       in.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransferResponse{MovementID: result.MovementID, Quantity: result.Quantity})
}

// ListPositions lista las posiciones de un sector (incluye las que están en cero).
func (h *LedgerHandler) ListPositions(c *fiber.Ctx) error {
	sectorID := c.Params("sectorID")
	if sectorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sector_id requerido"})
	}
	list, err := h.positions.ListBySector(c.Context(), GetCompanyID(c), sectorID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PositionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ToPositionResponse(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "positions": out})
}
