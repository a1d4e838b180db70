package entity

import "time"

// Tipos de sector dentro de una finca.
const (
	SectorTypeWarehouse = "WAREHOUSE" // bodega
	SectorTypeSilo      = "SILO"
	SectorTypeField     = "FIELD" // campo/parcela
)

// Sector representa una ubicación física de almacenamiento dentro de una finca.
// Es la unidad sobre la que se llevan las posiciones de stock.
type Sector struct {
	ID        string
	CompanyID string
	FarmID    string
	Name      string
	Type      string // ver constantes SectorType*
	CreatedAt time.Time
	UpdatedAt time.Time
}
