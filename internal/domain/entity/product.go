package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un insumo o producto agrícola del inventario.
// El costo promedio ponderado vive en cada posición de stock, no aquí;
// MinStock alimenta el reporte de stock bajo.
type Product struct {
	ID           string
	CompanyID    string
	InternalCode string // código interno único por empresa; fuente del prefijo de lote
	Name         string
	Description  string
	UnitMeasure  string          // kg, l, un, sc (saco), etc.
	MinStock     decimal.Decimal // umbral para reporte de stock bajo
	TrackByLot   bool            // true si el producto exige rastreo por lote
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
