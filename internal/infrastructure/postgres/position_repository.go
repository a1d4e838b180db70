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

var _ repository.PositionRepository = (*PositionRepo)(nil)

// PositionRepo implementación de PositionRepository sobre PostgreSQL.
// Las operaciones Reserve/Release/Deduct son sentencias UPDATE condicionales:
// la guarda de disponibilidad va en el WHERE, así dos escrituras concurrentes
// nunca consumen el mismo margen aunque lean la misma foto previa.
type PositionRepo struct {
	q Querier
}

// NewPositionRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPositionRepository(q Querier) *PositionRepo {
	return &PositionRepo{q: q}
}

const positionColumns = `id, company_id, product_id, sector_id, lot_id,
		quantity_on_hand, quantity_reserved, unit_cost, last_movement_at, created_at, updated_at`

func scanPosition(row pgx.Row) (*entity.StockPosition, error) {
	var p entity.StockPosition
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.ProductID, &p.SectorID, &p.LotID,
		&p.QuantityOnHand, &p.QuantityReserved, &p.UnitCost,
		&p.LastMovementAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// positionKey arma el predicado de identidad de la posición; lot_id admite NULL
// (stock a granel), por eso va por el builder y no inline.
func positionKey(companyID, productID, sectorID string, lotID *string) (string, []any) {
	p := newPredicate()
	p.Eq("company_id", companyID).
		Eq("product_id", productID).
		Eq("sector_id", sectorID).
		NullableEq("lot_id", lotID)
	return p.Clause()
}

func (r *PositionRepo) Get(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error) {
	where, args := positionKey(companyID, productID, sectorID, lotID)
	query := fmt.Sprintf(`SELECT %s FROM stock_positions WHERE %s`, positionColumns, where)
	pos, err := scanPosition(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return pos, nil
}

func (r *PositionRepo) GetForUpdate(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error) {
	where, args := positionKey(companyID, productID, sectorID, lotID)
	query := fmt.Sprintf(`SELECT %s FROM stock_positions WHERE %s FOR UPDATE`, positionColumns, where)
	pos, err := scanPosition(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("get position for update: %w", err)
	}
	return pos, nil
}

func (r *PositionRepo) Upsert(ctx context.Context, pos *entity.StockPosition) error {
	// UPDATE primero: el índice único sobre lot_id usa COALESCE y ON CONFLICT
	// no puede apuntarlo directo con lot_id NULL.
	where, args := positionKey(pos.CompanyID, pos.ProductID, pos.SectorID, pos.LotID)
	update := fmt.Sprintf(`
		UPDATE stock_positions
		SET quantity_on_hand = $%d, quantity_reserved = $%d, unit_cost = $%d,
		    last_movement_at = $%d, updated_at = now()
		WHERE %s`, len(args)+1, len(args)+2, len(args)+3, len(args)+4, where)
	updateArgs := append(args, pos.QuantityOnHand, pos.QuantityReserved, pos.UnitCost, pos.LastMovementAt)
	tag, err := r.q.Exec(ctx, update, updateArgs...)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	insert := `
		INSERT INTO stock_positions
			(id, company_id, product_id, sector_id, lot_id,
			 quantity_on_hand, quantity_reserved, unit_cost, last_movement_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err = r.q.Exec(ctx, insert,
		pos.ID, pos.CompanyID, pos.ProductID, pos.SectorID, pos.LotID,
		pos.QuantityOnHand, pos.QuantityReserved, pos.UnitCost, pos.LastMovementAt,
	)
	if err != nil {
		return asConflict(fmt.Errorf("insert position: %w", err), "uq_stock_positions_identity")
	}
	return nil
}

// ReserveIfAvailable incrementa quantity_reserved solo si el disponible
// (on_hand - reserved) alcanza. Contrato de concurrencia: la guarda va en la
// misma sentencia UPDATE que la escritura, así dos reservas en carrera sobre el
// mismo margen se serializan en el row lock de la fila y la segunda no matchea
// el WHERE: devuelve nil sin error. No requiere SELECT FOR UPDATE previo.
func (r *PositionRepo) ReserveIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	where, args := positionKey(companyID, productID, sectorID, lotID)
	query := fmt.Sprintf(`
		UPDATE stock_positions
		SET quantity_reserved = quantity_reserved + $%d, updated_at = now()
		WHERE %s AND quantity_on_hand - quantity_reserved >= $%d
		RETURNING %s`, len(args)+1, where, len(args)+1, positionColumns)
	pos, err := scanPosition(r.q.QueryRow(ctx, query, append(args, qty)...))
	if err != nil {
		return nil, fmt.Errorf("reserve position: %w", err)
	}
	return pos, nil
}

func (r *PositionRepo) ReleaseReserved(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	where, args := positionKey(companyID, productID, sectorID, lotID)
	query := fmt.Sprintf(`
		UPDATE stock_positions
		SET quantity_reserved = GREATEST(quantity_reserved - $%d, 0), updated_at = now()
		WHERE %s
		RETURNING %s`, len(args)+1, where, positionColumns)
	pos, err := scanPosition(r.q.QueryRow(ctx, query, append(args, qty)...))
	if err != nil {
		return nil, fmt.Errorf("release reserved: %w", err)
	}
	return pos, nil
}

func (r *PositionRepo) DeductIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error) {
	where, args := positionKey(companyID, productID, sectorID, lotID)
	query := fmt.Sprintf(`
		UPDATE stock_positions
		SET quantity_on_hand = quantity_on_hand - $%d, last_movement_at = now(), updated_at = now()
		WHERE %s AND quantity_on_hand - quantity_reserved >= $%d
		RETURNING %s`, len(args)+1, where, len(args)+1, positionColumns)
	pos, err := scanPosition(r.q.QueryRow(ctx, query, append(args, qty)...))
	if err != nil {
		return nil, fmt.Errorf("deduct position: %w", err)
	}
	return pos, nil
}

func (r *PositionRepo) SumOnHandByLot(ctx context.Context, companyID, lotID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_on_hand), 0)
		FROM stock_positions
		WHERE company_id = $1 AND lot_id = $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, lotID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum on-hand by lot: %w", err)
	}
	return total, nil
}

func (r *PositionRepo) ListBySector(ctx context.Context, companyID, sectorID string) ([]*entity.StockPosition, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stock_positions
		WHERE company_id = $1 AND sector_id = $2
		ORDER BY product_id, lot_id NULLS FIRST`, positionColumns)
	rows, err := r.q.Query(ctx, query, companyID, sectorID)
	if err != nil {
		return nil, fmt.Errorf("list positions by sector: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockPosition
	for rows.Next() {
		var p entity.StockPosition
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.ProductID, &p.SectorID, &p.LotID,
			&p.QuantityOnHand, &p.QuantityReserved, &p.UnitCost,
			&p.LastMovementAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
