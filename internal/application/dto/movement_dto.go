package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// MovementItemRequest una línea del movimiento a crear.
type MovementItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid4"`
	LotID     *string         `json:"lot_id,omitempty" validate:"omitempty,uuid4"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
}

// CreateMovementRequest cabecera + items para crear un movimiento completo.
type CreateMovementRequest struct {
	FarmID              string                `json:"farm_id" validate:"required,uuid4"`
	Type                string                `json:"movement_type" validate:"required,oneof=IN OUT TRANSFER ADJUST_IN ADJUST_OUT"`
	Date                time.Time             `json:"movement_date" validate:"required"`
	OriginSectorID      *string               `json:"origin_sector_id,omitempty" validate:"omitempty,uuid4"`
	DestinationSectorID *string               `json:"destination_sector_id,omitempty" validate:"omitempty,uuid4"`
	Notes               string                `json:"notes,omitempty"`
	Items               []MovementItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CancelMovementRequest motivo de la cancelación.
type CancelMovementRequest struct {
	Reason string `json:"reason,omitempty"`
}

// MovementItemResponse proyección de una línea.
type MovementItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	LotID      *string         `json:"lot_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// MovementResponse proyección de la cabecera con sus líneas.
type MovementResponse struct {
	ID                  string                 `json:"id"`
	FarmID              string                 `json:"farm_id"`
	Type                string                 `json:"movement_type"`
	DocumentNumber      string                 `json:"document_number"`
	Date                time.Time              `json:"movement_date"`
	OriginSectorID      *string                `json:"origin_sector_id,omitempty"`
	DestinationSectorID *string                `json:"destination_sector_id,omitempty"`
	TotalValue          decimal.Decimal        `json:"total_value"`
	Status              string                 `json:"status"`
	Notes               string                 `json:"notes,omitempty"`
	CreatedBy           string                 `json:"created_by"`
	ReversalOfID        *string                `json:"reversal_of_id,omitempty"`
	Items               []MovementItemResponse `json:"items"`
}

// ToMovementResponse proyecta la entidad al DTO.
func ToMovementResponse(m *entity.Movement) MovementResponse {
	items := make([]MovementItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, MovementItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			LotID:      it.LotID,
			Quantity:   it.Quantity,
			UnitValue:  it.UnitValue,
			TotalValue: it.TotalValue,
		})
	}
	return MovementResponse{
		ID:                  m.ID,
		FarmID:              m.FarmID,
		Type:                m.Type,
		DocumentNumber:      m.DocumentNumber,
		Date:                m.Date,
		OriginSectorID:      m.OriginSectorID,
		DestinationSectorID: m.DestinationSectorID,
		TotalValue:          m.TotalValue,
		Status:              m.Status,
		Notes:               m.Notes,
		CreatedBy:           m.CreatedBy,
		ReversalOfID:        m.ReversalOfID,
		Items:               items,
	}
}
