package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/application/movement"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// MovementHandler expone el ciclo de vida de movimientos: creación completa,
// aprobación, confirmación, cancelación y consulta.
type MovementHandler struct {
	engine *movement.Engine
}

// NewMovementHandler construye el handler de movimientos.
func NewMovementHandler(engine *movement.Engine) *MovementHandler {
	return &MovementHandler{engine: engine}
}

// Create crea un movimiento completo (cabecera + items) y aplica sus efectos.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if !parseAndValidate(c, &in) {
		return nil
	}
	items := make([]movement.CreateItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, movement.CreateItemInput{
			ProductID: it.ProductID,
			LotID:     it.LotID,
			Quantity:  it.Quantity,
			UnitValue: it.UnitValue,
		})
	}
	mov, err := h.engine.CreateComplete(c.Context(), movement.CreateInput{
		CompanyID:           GetCompanyID(c),
		ActorID:             GetUserID(c),
		FarmID:              in.FarmID,
		Type:                in.Type,
		Date:                in.Date,
		OriginSectorID:      in.OriginSectorID,
		DestinationSectorID: in.DestinationSectorID,
		Notes:               in.Notes,
		Items:               items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// Approve transiciona el movimiento de pending a approved.
func (h *MovementHandler) Approve(c *fiber.Ctx) error {
	mov, err := h.engine.Approve(c.Context(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// Confirm transiciona el movimiento de approved a confirmed (terminal).
func (h *MovementHandler) Confirm(c *fiber.Ctx) error {
	mov, err := h.engine.Confirm(c.Context(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// Cancel revierte los efectos del movimiento y lo marca como cancelado.
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelMovementRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.engine.Cancel(c.Context(), GetCompanyID(c), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// GetByID devuelve un movimiento con sus items.
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	mov, err := h.engine.GetByID(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// List lista movimientos con filtros opcionales por query string:
// type, status, from, to (RFC 3339), limit, offset.
func (h *MovementHandler) List(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC 3339)", Fields: []string{"from"}})
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC 3339)", Fields: []string{"to"}})
		}
		f.To = &t
	}
	list, err := h.engine.List(c.Context(), GetCompanyID(c), f)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
