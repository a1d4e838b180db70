package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, company_id, product_id, number, manufacture_date, expiry_date,
		initial_quantity, status, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.ProductID, &l.Number, &l.ManufactureDate,
		&l.ExpiryDate, &l.InitialQuantity, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots
			(id, company_id, product_id, number, manufacture_date, expiry_date,
			 initial_quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.CompanyID, lot.ProductID, lot.Number, lot.ManufactureDate,
		lot.ExpiryDate, lot.InitialQuantity, lot.Status,
	)
	if err != nil {
		return asConflict(fmt.Errorf("create lot: %w", err), "uq_lots_product_number")
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM lots WHERE company_id = $1 AND id = $2`, lotColumns)
	lot, err := scanLot(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

func (r *LotRepo) GetByNumber(ctx context.Context, companyID, productID, number string) (*entity.Lot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lots
		WHERE company_id = $1 AND product_id = $2 AND lower(number) = lower($3)`, lotColumns)
	lot, err := scanLot(r.q.QueryRow(ctx, query, companyID, productID, number))
	if err != nil {
		return nil, fmt.Errorf("get lot by number: %w", err)
	}
	return lot, nil
}

func (r *LotRepo) UpdateStatus(ctx context.Context, companyID, id, status string) error {
	query := `
		UPDATE lots SET status = $3, updated_at = now()
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, companyID, id, status)
	if err != nil {
		return fmt.Errorf("update lot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update lot status: lote %s no existe", id)
	}
	return nil
}

// NextSequence incrementa y devuelve el consecutivo de numeración de lotes del
// producto. El upsert deja la fila bloqueada hasta el commit, así la tx en
// curso serializa la asignación frente a otras transacciones.
func (r *LotRepo) NextSequence(ctx context.Context, companyID, productID string) (int64, error) {
	query := `
		INSERT INTO lot_sequences (company_id, product_id, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, product_id)
		DO UPDATE SET last_number = lot_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("next lot sequence: %w", err)
	}
	return n, nil
}

func (r *LotRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Lot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lots
		WHERE company_id = $1 AND product_id = $2
		ORDER BY created_at DESC`, lotColumns)
	return r.list(ctx, query, companyID, productID)
}

func (r *LotRepo) ListActive(ctx context.Context, companyID string) ([]*entity.Lot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lots
		WHERE company_id = $1 AND status = 'active'
		ORDER BY expiry_date NULLS LAST`, lotColumns)
	return r.list(ctx, query, companyID)
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(
			&l.ID, &l.CompanyID, &l.ProductID, &l.Number, &l.ManufactureDate,
			&l.ExpiryDate, &l.InitialQuantity, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
