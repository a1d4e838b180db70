package report

import (
	"context"
	"time"

	"github.com/agrocampo/agro-inventario/internal/application/dto"
	"github.com/agrocampo/agro-inventario/internal/domain/inventory"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// UseCase agrega las consultas de solo lectura del inventario: stock bajo,
// lotes por vencer y resumen por sector. Sin responsabilidad sobre invariantes;
// las lecturas son asesoras.
type UseCase struct {
	reportRepo  repository.ReportRepository
	warningDays int
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(reportRepo repository.ReportRepository, warningDays int) *UseCase {
	if warningDays <= 0 {
		warningDays = inventory.DefaultExpiryWarningDays
	}
	return &UseCase{reportRepo: reportRepo, warningDays: warningDays}
}

// LowStock lista los productos cuyo on-hand por sector está bajo su mínimo.
func (uc *UseCase) LowStock(ctx context.Context, companyID string) ([]dto.LowStockDTO, error) {
	rows, err := uc.reportRepo.LowStock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockDTO{
			ProductID:    r.ProductID,
			InternalCode: r.InternalCode,
			ProductName:  r.ProductName,
			SectorID:     r.SectorID,
			SectorName:   r.SectorName,
			OnHand:       r.OnHand,
			MinStock:     r.MinStock,
			Deficit:      r.MinStock.Sub(r.OnHand),
		})
	}
	return out, nil
}

// ExpiringLots lista lotes activos con vencimiento dentro del horizonte (en
// días) y anota la clasificación FEFO de cada uno.
func (uc *UseCase) ExpiringLots(ctx context.Context, companyID string, horizonDays int) ([]dto.ExpiringLotDTO, error) {
	if horizonDays <= 0 {
		horizonDays = uc.warningDays
	}
	now := time.Now()
	rows, err := uc.reportRepo.ExpiringLots(ctx, companyID, now.AddDate(0, 0, horizonDays))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringLotDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpiringLotDTO{
			LotID:          r.LotID,
			LotNumber:      r.LotNumber,
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			ExpiryDate:     r.ExpiryDate,
			Remaining:      r.Remaining,
			Classification: inventory.ClassifyExpiry(r.ExpiryDate, now, uc.warningDays),
		})
	}
	return out, nil
}

// SectorSummary resume posiciones, on-hand total y valor al costo por sector.
// farmID vacío = todas las fincas de la empresa.
func (uc *UseCase) SectorSummary(ctx context.Context, companyID, farmID string) ([]dto.SectorSummaryDTO, error) {
	rows, err := uc.reportRepo.SectorSummary(ctx, companyID, farmID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectorSummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SectorSummaryDTO{
			SectorID:    r.SectorID,
			SectorName:  r.SectorName,
			Positions:   r.Positions,
			TotalOnHand: r.TotalOnHand,
			TotalValue:  r.TotalValue,
		})
	}
	return out, nil
}
