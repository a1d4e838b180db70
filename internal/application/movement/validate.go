package movement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

func validMovementType(t string) bool {
	switch t {
	case entity.MovementTypeIN, entity.MovementTypeOUT, entity.MovementTypeTRANSFER,
		entity.MovementTypeADJUSTIN, entity.MovementTypeADJUSTOUT:
		return true
	}
	return false
}

// validateCreate valida cabecera e items y revalida la pertenencia al tenant de
// cada referencia (finca, sectores, productos, lotes) antes de abrir la
// transacción. Los campos malformados se devuelven juntos en un ValidationError.
func (e *Engine) validateCreate(ctx context.Context, in *CreateInput) error {
	var fields []string
	if in.CompanyID == "" {
		fields = append(fields, "company_id")
	}
	if in.FarmID == "" {
		fields = append(fields, "farm_id")
	}
	if !validMovementType(in.Type) {
		fields = append(fields, "movement_type")
	}
	if in.Date.IsZero() {
		fields = append(fields, "movement_date")
	}
	if len(in.Items) == 0 {
		fields = append(fields, "items")
	}

	needsOrigin := in.Type == entity.MovementTypeOUT || in.Type == entity.MovementTypeADJUSTOUT || in.Type == entity.MovementTypeTRANSFER
	needsDest := in.Type == entity.MovementTypeIN || in.Type == entity.MovementTypeADJUSTIN || in.Type == entity.MovementTypeTRANSFER
	if needsOrigin && (in.OriginSectorID == nil || *in.OriginSectorID == "") {
		fields = append(fields, "origin_sector_id")
	}
	if needsDest && (in.DestinationSectorID == nil || *in.DestinationSectorID == "") {
		fields = append(fields, "destination_sector_id")
	}
	if in.Type == entity.MovementTypeTRANSFER &&
		in.OriginSectorID != nil && in.DestinationSectorID != nil &&
		*in.OriginSectorID == *in.DestinationSectorID {
		fields = append(fields, "destination_sector_id")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			fields = append(fields, fmt.Sprintf("items[%d].product_id", i))
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			fields = append(fields, fmt.Sprintf("items[%d].quantity", i))
		}
		if it.UnitValue.LessThan(decimal.Zero) {
			fields = append(fields, fmt.Sprintf("items[%d].unit_value", i))
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}

	farm, err := e.farmRepo.GetByID(ctx, in.FarmID)
	if err != nil {
		return err
	}
	if farm == nil || farm.CompanyID != in.CompanyID {
		return domain.ErrNotFound
	}
	if needsOrigin {
		if err := e.checkSector(ctx, in.CompanyID, in.FarmID, *in.OriginSectorID, in.Type); err != nil {
			return err
		}
	}
	if needsDest {
		if err := e.checkSector(ctx, in.CompanyID, in.FarmID, *in.DestinationSectorID, in.Type); err != nil {
			return err
		}
	}
	for _, it := range in.Items {
		p, err := e.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p == nil || p.CompanyID != in.CompanyID {
			return domain.ErrNotFound
		}
		if it.LotID != nil {
			l, err := e.lotRepo.GetByID(ctx, in.CompanyID, *it.LotID)
			if err != nil {
				return err
			}
			if l == nil || l.ProductID != it.ProductID {
				return domain.ErrNotFound
			}
		}
	}
	return nil
}

// checkSector valida que el sector exista y pertenezca a la empresa y finca
// declaradas. Un traslado puede cruzar fincas, así que para TRANSFER solo se
// exige la empresa.
func (e *Engine) checkSector(ctx context.Context, companyID, farmID, sectorID, movType string) error {
	s, err := e.sectorRepo.GetByID(ctx, sectorID)
	if err != nil {
		return err
	}
	if s == nil || s.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if movType != entity.MovementTypeTRANSFER && s.FarmID != farmID {
		return domain.ErrNotFound
	}
	return nil
}
