package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// AdjustRequest fija el on-hand de una posición en un valor absoluto (recuento).
type AdjustRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid4"`
	SectorID    string          `json:"sector_id" validate:"required,uuid4"`
	LotID       *string         `json:"lot_id,omitempty" validate:"omitempty,uuid4"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason,omitempty"`
}

// AdjustResponse cantidades previa y nueva, y el delta aplicado.
type AdjustResponse struct {
	Previous decimal.Decimal `json:"previous"`
	New      decimal.Decimal `json:"new"`
	Delta    decimal.Decimal `json:"delta"`
}

// ReserveRequest reserva (o libera) cantidad sobre el disponible de una posición.
type ReserveRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid4"`
	SectorID  string          `json:"sector_id" validate:"required,uuid4"`
	LotID     *string         `json:"lot_id,omitempty" validate:"omitempty,uuid4"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferRequest traslada cantidad entre sectores conservando el costo.
type TransferRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid4"`
	OriginSectorID string          `json:"origin_sector_id" validate:"required,uuid4"`
	DestSectorID   string          `json:"destination_sector_id" validate:"required,uuid4"`
	LotID          *string         `json:"lot_id,omitempty" validate:"omitempty,uuid4"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// TransferResponse identifica el movimiento de auditoría generado.
type TransferResponse struct {
	MovementID string          `json:"movement_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// PositionResponse proyección de una posición de stock.
type PositionResponse struct {
	ProductID         string          `json:"product_id"`
	SectorID          string          `json:"sector_id"`
	LotID             *string         `json:"lot_id,omitempty"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	LastMovementAt    time.Time       `json:"last_movement_at"`
}

// ToPositionResponse proyecta la entidad al DTO con el disponible derivado.
func ToPositionResponse(p *entity.StockPosition) PositionResponse {
	return PositionResponse{
		ProductID:         p.ProductID,
		SectorID:          p.SectorID,
		LotID:             p.LotID,
		QuantityOnHand:    p.QuantityOnHand,
		QuantityReserved:  p.QuantityReserved,
		QuantityAvailable: p.Available(),
		UnitCost:          p.UnitCost,
		LastMovementAt:    p.LastMovementAt,
	}
}
