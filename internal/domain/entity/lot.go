package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote. "consumed" es un estado terminal de negocio, no un borrado.
const (
	LotStatusActive   = "active"
	LotStatusConsumed = "consumed"
)

// Lot representa un lote/partida de un producto con su propio ciclo de
// vencimiento y consumo. Invariante: la suma de on-hand de todas las
// posiciones que lo referencian nunca supera InitialQuantity.
type Lot struct {
	ID              string
	CompanyID       string
	ProductID       string
	Number          string // único por producto (case-insensitive)
	ManufactureDate time.Time
	ExpiryDate      *time.Time // nil = sin vencimiento
	InitialQuantity decimal.Decimal
	Status          string // ver constantes LotStatus*
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
