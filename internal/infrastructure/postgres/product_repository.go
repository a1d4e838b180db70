package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Acepta pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, internal_code, name, description, unit_measure,
		min_stock, track_by_lot, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products
			(id, company_id, internal_code, name, description, unit_measure,
			 min_stock, track_by_lot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.InternalCode, p.Name, p.Description, p.UnitMeasure,
		p.MinStock, p.TrackByLot,
	)
	if err != nil {
		return asConflict(fmt.Errorf("create product: %w", err), "uq_products_internal_code")
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.InternalCode, &p.Name, &p.Description, &p.UnitMeasure,
		&p.MinStock, &p.TrackByLot, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE company_id = $1
		ORDER BY internal_code LIMIT $2 OFFSET $3`, productColumns)
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.InternalCode, &p.Name, &p.Description, &p.UnitMeasure,
			&p.MinStock, &p.TrackByLot, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
