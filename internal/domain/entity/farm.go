package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Farm representa una finca/hacienda de una empresa. Los sectores (bodegas,
// silos, campos) pertenecen a una finca.
type Farm struct {
	ID        string
	CompanyID string
	Name      string
	Location  string
	AreaHa    decimal.Decimal // hectáreas
	Status    string          // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
