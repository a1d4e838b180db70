package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockRow resultado crudo del repositorio para un producto bajo su mínimo.
type LowStockRow struct {
	ProductID    string
	InternalCode string
	ProductName  string
	SectorID     string
	SectorName   string
	OnHand       decimal.Decimal
	MinStock     decimal.Decimal
}

// ExpiringLotRow lote activo con vencimiento dentro del horizonte consultado.
type ExpiringLotRow struct {
	LotID       string
	LotNumber   string
	ProductID   string
	ProductName string
	ExpiryDate  *time.Time
	Remaining   decimal.Decimal // on-hand agregado de sus posiciones
}

// SectorSummaryRow agregado por sector: cantidad de posiciones y valor al costo.
type SectorSummaryRow struct {
	SectorID    string
	SectorName  string
	Positions   int
	TotalOnHand decimal.Decimal
	TotalValue  decimal.Decimal // Σ on_hand * costo promedio
}

// ReportRepository consultas de solo lectura del panel de inventario.
// Sin responsabilidad sobre invariantes: las lecturas son asesoras y no
// garantizan snapshot consistente entre filas salvo que el caller las envuelva
// en una transacción de lectura.
type ReportRepository interface {
	LowStock(ctx context.Context, companyID string) ([]LowStockRow, error)
	ExpiringLots(ctx context.Context, companyID string, horizon time.Time) ([]ExpiringLotRow, error)
	SectorSummary(ctx context.Context, companyID, farmID string) ([]SectorSummaryRow, error)
}
