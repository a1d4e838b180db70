package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el panel de inventario.
// Siempre va contra el pool, nunca dentro de una transacción de escritura.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// LowStock devuelve, por producto y sector, las posiciones cuyo on-hand
// agregado está por debajo del mínimo configurado en el producto.
// Ordena por déficit descendente (mayor quiebre primero).
func (r *ReportRepo) LowStock(ctx context.Context, companyID string) ([]repository.LowStockRow, error) {
	query := `
		SELECT
			p.id,
			p.internal_code,
			p.name,
			s.id,
			s.name,
			COALESCE(SUM(sp.quantity_on_hand), 0) AS on_hand,
			p.min_stock
		FROM products p
		JOIN stock_positions sp ON sp.product_id = p.id
		JOIN sectors s ON s.id = sp.sector_id
		WHERE p.company_id = $1
		  AND p.min_stock > 0
		GROUP BY p.id, p.internal_code, p.name, s.id, s.name, p.min_stock
		HAVING COALESCE(SUM(sp.quantity_on_hand), 0) < p.min_stock
		ORDER BY (p.min_stock - COALESCE(SUM(sp.quantity_on_hand), 0)) DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(
			&row.ProductID, &row.InternalCode, &row.ProductName,
			&row.SectorID, &row.SectorName, &row.OnHand, &row.MinStock,
		); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ExpiringLots devuelve los lotes activos con vencimiento dentro del horizonte,
// con su on-hand agregado. Los lotes sin fecha de vencimiento no aparecen.
func (r *ReportRepo) ExpiringLots(ctx context.Context, companyID string, horizon time.Time) ([]repository.ExpiringLotRow, error) {
	query := `
		SELECT
			l.id,
			l.number,
			l.product_id,
			p.name,
			l.expiry_date,
			COALESCE(SUM(sp.quantity_on_hand), 0) AS remaining
		FROM lots l
		JOIN products p ON p.id = l.product_id
		LEFT JOIN stock_positions sp ON sp.lot_id = l.id
		WHERE l.company_id = $1
		  AND l.status = 'active'
		  AND l.expiry_date IS NOT NULL
		  AND l.expiry_date <= $2
		GROUP BY l.id, l.number, l.product_id, p.name, l.expiry_date
		ORDER BY l.expiry_date ASC`
	rows, err := r.q.Query(ctx, query, companyID, horizon)
	if err != nil {
		return nil, fmt.Errorf("expiring lots report: %w", err)
	}
	defer rows.Close()
	var list []repository.ExpiringLotRow
	for rows.Next() {
		var row repository.ExpiringLotRow
		if err := rows.Scan(
			&row.LotID, &row.LotNumber, &row.ProductID, &row.ProductName,
			&row.ExpiryDate, &row.Remaining,
		); err != nil {
			return nil, fmt.Errorf("scan expiring lot row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// SectorSummary agrega por sector la cantidad de posiciones, el on-hand total
// y el valor al costo promedio. farmID vacío cubre toda la empresa.
func (r *ReportRepo) SectorSummary(ctx context.Context, companyID, farmID string) ([]repository.SectorSummaryRow, error) {
	p := newPredicate()
	p.Eq("s.company_id", companyID)
	if farmID != "" {
		p.Eq("s.farm_id", farmID)
	}
	where, args := p.Clause()
	query := fmt.Sprintf(`
		SELECT
			s.id,
			s.name,
			COUNT(sp.id) AS positions,
			COALESCE(SUM(sp.quantity_on_hand), 0) AS total_on_hand,
			COALESCE(SUM(sp.quantity_on_hand * sp.unit_cost), 0) AS total_value
		FROM sectors s
		LEFT JOIN stock_positions sp ON sp.sector_id = s.id
		WHERE %s
		GROUP BY s.id, s.name
		ORDER BY s.name`, where)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sector summary report: %w", err)
	}
	defer rows.Close()
	var list []repository.SectorSummaryRow
	for rows.Next() {
		var row repository.SectorSummaryRow
		if err := rows.Scan(
			&row.SectorID, &row.SectorName, &row.Positions,
			&row.TotalOnHand, &row.TotalValue,
		); err != nil {
			return nil, fmt.Errorf("scan sector summary row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
