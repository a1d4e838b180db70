// Package masterdata cubre el alta y consulta de los datos maestros que el
// inventario referencia: empresas, fincas, sectores y productos. Sin lógica de
// stock; el Stock Ledger solo los revalida.
package masterdata

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// UseCase operaciones CRUD mínimas sobre los datos maestros.
type UseCase struct {
	companyRepo repository.CompanyRepository
	farmRepo    repository.FarmRepository
	sectorRepo  repository.SectorRepository
	productRepo repository.ProductRepository
}

// NewUseCase construye el caso de uso de datos maestros.
func NewUseCase(
	companyRepo repository.CompanyRepository,
	farmRepo repository.FarmRepository,
	sectorRepo repository.SectorRepository,
	productRepo repository.ProductRepository,
) *UseCase {
	return &UseCase{
		companyRepo: companyRepo,
		farmRepo:    farmRepo,
		sectorRepo:  sectorRepo,
		productRepo: productRepo,
	}
}

// CreateCompany da de alta un tenant.
func (uc *UseCase) CreateCompany(ctx context.Context, in dto.CreateCompanyRequest) (*entity.Company, error) {
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// CreateFarm da de alta una finca dentro de la empresa.
func (uc *UseCase) CreateFarm(ctx context.Context, companyID string, in dto.CreateFarmRequest) (*entity.Farm, error) {
	now := time.Now()
	farm := &entity.Farm{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Location:  in.Location,
		AreaHa:    in.AreaHa,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.farmRepo.Create(ctx, farm); err != nil {
		return nil, err
	}
	return farm, nil
}

// ListFarms lista las fincas de la empresa.
func (uc *UseCase) ListFarms(ctx context.Context, companyID string) ([]*entity.Farm, error) {
	return uc.farmRepo.ListByCompany(ctx, companyID)
}

// CreateSector da de alta un sector; la finca debe existir y ser de la empresa.
func (uc *UseCase) CreateSector(ctx context.Context, companyID string, in dto.CreateSectorRequest) (*entity.Sector, error) {
	farm, err := uc.farmRepo.GetByID(ctx, in.FarmID)
	if err != nil {
		return nil, err
	}
	if farm == nil || farm.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	sector := &entity.Sector{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		FarmID:    in.FarmID,
		Name:      in.Name,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.sectorRepo.Create(ctx, sector); err != nil {
		return nil, err
	}
	return sector, nil
}

// ListSectors lista los sectores de una finca de la empresa.
func (uc *UseCase) ListSectors(ctx context.Context, companyID, farmID string) ([]*entity.Sector, error) {
	return uc.sectorRepo.ListByFarm(ctx, companyID, farmID)
}

// CreateProduct da de alta un producto/insumo.
func (uc *UseCase) CreateProduct(ctx context.Context, companyID string, in dto.CreateProductRequest) (*entity.Product, error) {
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		InternalCode: in.InternalCode,
		Name:         in.Name,
		Description:  in.Description,
		UnitMeasure:  in.UnitMeasure,
		MinStock:     in.MinStock,
		TrackByLot:   in.TrackByLot,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts lista los productos de la empresa con paginación.
func (uc *UseCase) ListProducts(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.productRepo.List(ctx, companyID, limit, offset)
}
