package repository

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// SectorRepository define el puerto de persistencia de sectores (bodegas, silos, campos).
type SectorRepository interface {
	Create(ctx context.Context, s *entity.Sector) error
	// GetByID devuelve el sector o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sector, error)
	ListByFarm(ctx context.Context, companyID, farmID string) ([]*entity.Sector, error)
}

// FarmRepository define el puerto de persistencia de fincas.
type FarmRepository interface {
	Create(ctx context.Context, f *entity.Farm) error
	// GetByID devuelve la finca o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Farm, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Farm, error)
}
