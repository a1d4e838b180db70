package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var _ repository.SectorRepository = (*SectorRepo)(nil)
var _ repository.FarmRepository = (*FarmRepo)(nil)

// SectorRepo implementación de SectorRepository sobre PostgreSQL.
type SectorRepo struct {
	q Querier
}

// NewSectorRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSectorRepository(q Querier) *SectorRepo {
	return &SectorRepo{q: q}
}

func (r *SectorRepo) Create(ctx context.Context, s *entity.Sector) error {
	query := `
		INSERT INTO sectors (id, company_id, farm_id, name, sector_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.q.Exec(ctx, query, s.ID, s.CompanyID, s.FarmID, s.Name, s.Type)
	if err != nil {
		return asConflict(fmt.Errorf("create sector: %w", err), "fk_sectors_farm")
	}
	return nil
}

func (r *SectorRepo) GetByID(ctx context.Context, id string) (*entity.Sector, error) {
	query := `
		SELECT id, company_id, farm_id, name, sector_type, created_at, updated_at
		FROM sectors WHERE id = $1`
	var s entity.Sector
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.FarmID, &s.Name, &s.Type, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return &s, nil
}

func (r *SectorRepo) ListByFarm(ctx context.Context, companyID, farmID string) ([]*entity.Sector, error) {
	query := `
		SELECT id, company_id, farm_id, name, sector_type, created_at, updated_at
		FROM sectors
		WHERE company_id = $1 AND farm_id = $2
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID, farmID)
	if err != nil {
		return nil, fmt.Errorf("list sectors by farm: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sector
	for rows.Next() {
		var s entity.Sector
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.FarmID, &s.Name, &s.Type, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// FarmRepo implementación de FarmRepository sobre PostgreSQL.
type FarmRepo struct {
	q Querier
}

// NewFarmRepository construye el adaptador. Acepta pool o tx (Querier).
func NewFarmRepository(q Querier) *FarmRepo {
	return &FarmRepo{q: q}
}

func (r *FarmRepo) Create(ctx context.Context, f *entity.Farm) error {
	query := `
		INSERT INTO farms (id, company_id, name, location, area_ha, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.q.Exec(ctx, query, f.ID, f.CompanyID, f.Name, f.Location, f.AreaHa, f.Status)
	if err != nil {
		return asConflict(fmt.Errorf("create farm: %w", err), "fk_farms_company")
	}
	return nil
}

func (r *FarmRepo) GetByID(ctx context.Context, id string) (*entity.Farm, error) {
	query := `
		SELECT id, company_id, name, location, area_ha, status, created_at, updated_at
		FROM farms WHERE id = $1`
	var f entity.Farm
	err := r.q.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.CompanyID, &f.Name, &f.Location, &f.AreaHa, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get farm: %w", err)
	}
	return &f, nil
}

func (r *FarmRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Farm, error) {
	query := `
		SELECT id, company_id, name, location, area_ha, status, created_at, updated_at
		FROM farms
		WHERE company_id = $1
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}
	defer rows.Close()
	var list []*entity.Farm
	for rows.Next() {
		var f entity.Farm
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.Name, &f.Location, &f.AreaHa, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan farm: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}
