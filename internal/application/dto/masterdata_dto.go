package dto

import (
	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// CreateCompanyRequest alta de una empresa (tenant).
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"tax_id" validate:"required"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// CompanyResponse proyección pública de una empresa.
type CompanyResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TaxID  string `json:"tax_id"`
	Status string `json:"status"`
}

// CreateFarmRequest alta de una finca.
type CreateFarmRequest struct {
	Name     string          `json:"name" validate:"required"`
	Location string          `json:"location,omitempty"`
	AreaHa   decimal.Decimal `json:"area_ha"`
}

// FarmResponse proyección de una finca.
type FarmResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Location string          `json:"location,omitempty"`
	AreaHa   decimal.Decimal `json:"area_ha"`
	Status   string          `json:"status"`
}

// CreateSectorRequest alta de un sector dentro de una finca.
type CreateSectorRequest struct {
	FarmID string `json:"farm_id" validate:"required,uuid4"`
	Name   string `json:"name" validate:"required"`
	Type   string `json:"sector_type" validate:"required,oneof=WAREHOUSE SILO FIELD"`
}

// SectorResponse proyección de un sector.
type SectorResponse struct {
	ID     string `json:"id"`
	FarmID string `json:"farm_id"`
	Name   string `json:"name"`
	Type   string `json:"sector_type"`
}

// CreateProductRequest alta de un producto/insumo.
type CreateProductRequest struct {
	InternalCode string          `json:"internal_code" validate:"required,max=32"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description,omitempty"`
	UnitMeasure  string          `json:"unit_measure" validate:"required"`
	MinStock     decimal.Decimal `json:"min_stock"`
	TrackByLot   bool            `json:"track_by_lot"`
}

// ProductResponse proyección de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	InternalCode string          `json:"internal_code"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	UnitMeasure  string          `json:"unit_measure"`
	MinStock     decimal.Decimal `json:"min_stock"`
	TrackByLot   bool            `json:"track_by_lot"`
}

// ToCompanyResponse proyecta la entidad al DTO.
func ToCompanyResponse(c *entity.Company) CompanyResponse {
	return CompanyResponse{ID: c.ID, Name: c.Name, TaxID: c.TaxID, Status: c.Status}
}

// ToFarmResponse proyecta la entidad al DTO.
func ToFarmResponse(f *entity.Farm) FarmResponse {
	return FarmResponse{ID: f.ID, Name: f.Name, Location: f.Location, AreaHa: f.AreaHa, Status: f.Status}
}

// ToSectorResponse proyecta la entidad al DTO.
func ToSectorResponse(s *entity.Sector) SectorResponse {
	return SectorResponse{ID: s.ID, FarmID: s.FarmID, Name: s.Name, Type: s.Type}
}

// ToProductResponse proyecta la entidad al DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		InternalCode: p.InternalCode,
		Name:         p.Name,
		Description:  p.Description,
		UnitMeasure:  p.UnitMeasure,
		MinStock:     p.MinStock,
		TrackByLot:   p.TrackByLot,
	}
}
