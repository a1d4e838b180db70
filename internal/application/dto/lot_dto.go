package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// CreateLotRequest crea un lote; number vacío = autogenerado.
type CreateLotRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid4"`
	Number          string          `json:"lot_number,omitempty"`
	ManufactureDate time.Time       `json:"manufacture_date" validate:"required"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
}

// GenerateLotNumberRequest pide un número de lote nuevo para un producto.
type GenerateLotNumberRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Prefix    string `json:"prefix,omitempty" validate:"omitempty,max=8"`
}

// LotResponse proyección de un lote con su clasificación de vencimiento.
type LotResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Number          string          `json:"lot_number"`
	ManufactureDate time.Time       `json:"manufacture_date"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	Status          string          `json:"status"`
	Classification  string          `json:"classification"`
}

// ToLotResponse proyecta la entidad al DTO; classification la aporta el caller
// porque depende de la ventana de política configurada.
func ToLotResponse(l *entity.Lot, classification string) LotResponse {
	return LotResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		Number:          l.Number,
		ManufactureDate: l.ManufactureDate,
		ExpiryDate:      l.ExpiryDate,
		InitialQuantity: l.InitialQuantity,
		Status:          l.Status,
		Classification:  classification,
	}
}
