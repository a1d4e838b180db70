package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/application/lot"
)

// LotHandler expone el rastreo de lotes: creación, numeración, consumo y listado.
type LotHandler struct {
	uc *lot.TrackerUseCase
}

// NewLotHandler construye el handler de lotes.
func NewLotHandler(uc *lot.TrackerUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create crea un lote; sin número el sistema lo autogenera.
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	l, err := h.uc.CreateLot(c.Context(), lot.CreateLotInput{
		CompanyID:       GetCompanyID(c),
		ActorID:         GetUserID(c),
		ProductID:       in.ProductID,
		Number:          in.Number,
		ManufactureDate: in.ManufactureDate,
		ExpiryDate:      in.ExpiryDate,
		InitialQuantity: in.InitialQuantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToLotResponse(l, h.uc.Classify(l)))
}

// GenerateNumber entrega un número de lote nuevo sin crear el lote.
func (h *LotHandler) GenerateNumber(c *fiber.Ctx) error {
	var in dto.GenerateLotNumberRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	number, err := h.uc.GenerateNumber(c.Context(), GetCompanyID(c), in.ProductID, in.Prefix)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"lot_number": number})
}

// MarkConsumed marca el lote como consumido si su on-hand agregado es cero.
func (h *LotHandler) MarkConsumed(c *fiber.Ctx) error {
	l, err := h.uc.MarkConsumed(c.Context(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToLotResponse(l, h.uc.Classify(l)))
}

// ListByProduct lista los lotes de un producto con su clasificación de vencimiento.
func (h *LotHandler) ListByProduct(c *fiber.Ctx) error {
	list, err := h.uc.ListByProduct(c.Context(), GetCompanyID(c), c.Params("productID"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LotResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.ToLotResponse(l, h.uc.Classify(l)))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}
