package ledger

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// Chequeos de pertenencia al tenant: todo id de producto/sector/lote que entra
// por la frontera del ledger se revalida contra la empresa declarada, en vez de
// confiar en las llaves que manda el caller.

func (uc *LedgerUseCase) checkProduct(ctx context.Context, companyID, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id")
	}
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *LedgerUseCase) checkSector(ctx context.Context, companyID, sectorID string) (*entity.Sector, error) {
	if sectorID == "" {
		return nil, domain.NewValidationError("sector_id")
	}
	s, err := uc.sectorRepo.GetByID(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// checkLot acepta lotID nil (stock a granel). Si viene, el lote debe existir,
// ser de la empresa y del producto indicado.
func (uc *LedgerUseCase) checkLot(ctx context.Context, companyID, productID string, lotID *string) (*entity.Lot, error) {
	if lotID == nil {
		return nil, nil
	}
	l, err := uc.lotRepo.GetByID(ctx, companyID, *lotID)
	if err != nil {
		return nil, err
	}
	if l == nil || l.ProductID != productID {
		return nil, domain.ErrNotFound
	}
	return l, nil
}
