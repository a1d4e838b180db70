package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPosition es la unidad atómica de verdad del inventario: el saldo de un
// producto en un sector, opcionalmente por lote (LotID nil = stock a granel).
// Nunca se borra físicamente; una posición que llega a cero persiste en cero.
// Solo el Stock Ledger la muta.
type StockPosition struct {
	ID               string
	CompanyID        string
	ProductID        string
	SectorID         string
	LotID            *string
	QuantityOnHand   decimal.Decimal // >= 0
	QuantityReserved decimal.Decimal // >= 0
	UnitCost         decimal.Decimal // costo promedio ponderado, >= 0
	LastMovementAt   time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available devuelve la cantidad disponible (on-hand menos reservado).
func (p *StockPosition) Available() decimal.Decimal {
	return p.QuantityOnHand.Sub(p.QuantityReserved)
}
