package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockDTO producto bajo su mínimo en un sector.
type LowStockDTO struct {
	ProductID    string          `json:"product_id"`
	InternalCode string          `json:"internal_code"`
	ProductName  string          `json:"product_name"`
	SectorID     string          `json:"sector_id"`
	SectorName   string          `json:"sector_name"`
	OnHand       decimal.Decimal `json:"on_hand"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Deficit      decimal.Decimal `json:"deficit"`
}

// ExpiringLotDTO lote activo dentro del horizonte de vencimiento.
type ExpiringLotDTO struct {
	LotID          string          `json:"lot_id"`
	LotNumber      string          `json:"lot_number"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	Remaining      decimal.Decimal `json:"remaining"`
	Classification string          `json:"classification"`
}

// SectorSummaryDTO agregado de inventario por sector.
type SectorSummaryDTO struct {
	SectorID    string          `json:"sector_id"`
	SectorName  string          `json:"sector_name"`
	Positions   int             `json:"positions"`
	TotalOnHand decimal.Decimal `json:"total_on_hand"`
	TotalValue  decimal.Decimal `json:"total_value"`
}
