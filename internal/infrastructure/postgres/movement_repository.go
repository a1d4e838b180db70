package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL.
// El log de movimientos es append-only: las cabeceras solo cambian de estado
// y de total, los items nunca se tocan después de insertados.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Acepta pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, company_id, farm_id, movement_type, document_number, movement_date,
		origin_sector_id, destination_sector_id, total_value, status, notes,
		created_by, approved_by, cancelled_by, cancel_reason, reversal_of_id,
		created_at, updated_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.FarmID, &m.Type, &m.DocumentNumber, &m.Date,
		&m.OriginSectorID, &m.DestinationSectorID, &m.TotalValue, &m.Status, &m.Notes,
		&m.CreatedBy, &m.ApprovedBy, &m.CancelledBy, &m.CancelReason, &m.ReversalOfID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepo) CreateHeader(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements
			(id, company_id, farm_id, movement_type, document_number, movement_date,
			 origin_sector_id, destination_sector_id, total_value, status, notes,
			 created_by, reversal_of_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.FarmID, m.Type, m.DocumentNumber, m.Date,
		m.OriginSectorID, m.DestinationSectorID, m.TotalValue, m.Status, m.Notes,
		m.CreatedBy, m.ReversalOfID,
	)
	if err != nil {
		return asConflict(fmt.Errorf("create movement header: %w", err), "uq_movements_document_number")
	}
	return nil
}

func (r *MovementRepo) CreateItem(ctx context.Context, item *entity.MovementItem) error {
	query := `
		INSERT INTO movement_items
			(id, movement_id, product_id, lot_id, quantity, unit_value, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.MovementID, item.ProductID, item.LotID,
		item.Quantity, item.UnitValue, item.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("create movement item: %w", err)
	}
	return nil
}

func (r *MovementRepo) UpdateTotal(ctx context.Context, movementID string, total decimal.Decimal) error {
	query := `UPDATE movements SET total_value = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, movementID, total)
	if err != nil {
		return fmt.Errorf("update movement total: %w", err)
	}
	return nil
}

func (r *MovementRepo) UpdateStatus(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements
		SET status = $3, approved_by = $4, cancelled_by = $5, cancel_reason = $6, updated_at = now()
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		m.CompanyID, m.ID, m.Status, m.ApprovedBy, m.CancelledBy, m.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update movement status: movimiento %s no existe", m.ID)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	query := fmt.Sprintf(`SELECT %s FROM movements WHERE company_id = $1 AND id = $2`, movementColumns)
	m, err := scanMovement(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	items, err := r.listItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Items = items
	return m, nil
}

func (r *MovementRepo) listItems(ctx context.Context, movementID string) ([]entity.MovementItem, error) {
	query := `
		SELECT id, movement_id, product_id, lot_id, quantity, unit_value, total_value, created_at
		FROM movement_items
		WHERE movement_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list movement items: %w", err)
	}
	defer rows.Close()
	var items []entity.MovementItem
	for rows.Next() {
		var it entity.MovementItem
		if err := rows.Scan(
			&it.ID, &it.MovementID, &it.ProductID, &it.LotID,
			&it.Quantity, &it.UnitValue, &it.TotalValue, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MovementRepo) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	p := newPredicate()
	p.Eq("company_id", companyID)
	if f.Type != "" {
		p.Eq("movement_type", f.Type)
	}
	if f.Status != "" {
		p.Eq("status", f.Status)
	}
	if f.From != nil {
		p.Gte("movement_date", *f.From)
	}
	if f.To != nil {
		p.Lte("movement_date", *f.To)
	}
	limitPh, offsetPh := p.Arg(f.Limit), p.Arg(f.Offset)
	where, args := p.Clause()
	query := fmt.Sprintf(`
		SELECT %s FROM movements
		WHERE %s
		ORDER BY movement_date DESC, created_at DESC
		LIMIT %s OFFSET %s`, movementColumns, where, limitPh, offsetPh)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.FarmID, &m.Type, &m.DocumentNumber, &m.Date,
			&m.OriginSectorID, &m.DestinationSectorID, &m.TotalValue, &m.Status, &m.Notes,
			&m.CreatedBy, &m.ApprovedBy, &m.CancelledBy, &m.CancelReason, &m.ReversalOfID,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// NextDocumentNumber incrementa y devuelve el consecutivo de documentos para
// empresa + código de tipo + año. El upsert deja la fila de secuencia
// bloqueada hasta el commit, serializando la numeración entre transacciones.
func (r *MovementRepo) NextDocumentNumber(ctx context.Context, companyID, typeCode string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, type_code, year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, type_code, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID, typeCode, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next document number: %w", err)
	}
	return n, nil
}
