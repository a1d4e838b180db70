package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/application/ports"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/inventory"
)

// Variantes *InTx: aplican efectos de ledger usando los repositorios de la
// transacción del caller (patrón usado por el Movement Engine, que abre una
// sola transacción para cabecera + items + posiciones).

// InboundParams parámetros para una entrada de stock dentro de una tx.
type InboundParams struct {
	CompanyID string
	ProductID string
	SectorID  string
	LotID     *string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Now       time.Time
}

// ApplyInboundInTx suma on-hand y recalcula el costo promedio ponderado con el
// costo de la entrada. Crea la posición si no existe. Respeta el tope del lote:
// el on-hand agregado de un lote nunca supera su cantidad inicial.
func (uc *LedgerUseCase) ApplyInboundInTx(ctx context.Context, r ports.Repos, p InboundParams) (*entity.StockPosition, error) {
	pos, err := r.Positions.GetForUpdate(ctx, p.CompanyID, p.ProductID, p.SectorID, p.LotID)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = newPosition(p.CompanyID, p.ProductID, p.SectorID, p.LotID, p.Now)
	}
	if p.LotID != nil {
		lot, err := r.Lots.GetByID(ctx, p.CompanyID, *p.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil || lot.ProductID != p.ProductID {
			return nil, domain.ErrNotFound
		}
		if err := checkLotCap(ctx, r, lot, p.Quantity); err != nil {
			return nil, err
		}
		if err := reactivateIfConsumed(ctx, r, lot); err != nil {
			return nil, err
		}
	}
	pos.UnitCost = inventory.WeightedAverageCost(pos.QuantityOnHand, pos.UnitCost, p.Quantity, p.UnitCost)
	pos.QuantityOnHand = pos.QuantityOnHand.Add(p.Quantity)
	pos.LastMovementAt = p.Now
	if err := r.Positions.Upsert(ctx, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// OutboundParams parámetros para una salida de stock dentro de una tx.
type OutboundParams struct {
	CompanyID string
	ProductID string
	SectorID  string
	LotID     *string
	Quantity  decimal.Decimal
	Now       time.Time
}

// ApplyOutboundInTx descuenta on-hand con la guarda "disponible >= cantidad"
// en la misma sentencia. ErrInsufficientStock si no alcanza. El costo promedio
// del stock restante no cambia.
func (uc *LedgerUseCase) ApplyOutboundInTx(ctx context.Context, r ports.Repos, p OutboundParams) (*entity.StockPosition, error) {
	pos, err := r.Positions.DeductIfAvailable(ctx, p.CompanyID, p.ProductID, p.SectorID, p.LotID, p.Quantity)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, domain.ErrInsufficientStock
	}
	return pos, nil
}

type TransferParams struct {
	CompanyID      string
	ProductID      string
	OriginSectorID string
	DestSectorID   string
	LotID          *string
	Quantity       decimal.Decimal
	Now            time.Time
}

// TransferInTx descuenta en origen (guardado) y suma en destino dentro de la
// transacción del caller. El costo de destino se recalcula con la fórmula
// ponderada usando el costo de origen como costo de entrada: si destino estaba
// en cero queda exactamente el costo de origen. Devuelve la posición de origen
// tal como quedó tras el descuento (su costo no cambia).
func (uc *LedgerUseCase) TransferInTx(ctx context.Context, r ports.Repos, p TransferParams) (*entity.StockPosition, error) {
	originPos, err := r.Positions.DeductIfAvailable(ctx, p.CompanyID, p.ProductID, p.OriginSectorID, p.LotID, p.Quantity)
	if err != nil {
		return nil, err
	}
	if originPos == nil {
		return nil, domain.ErrInsufficientStock
	}
	destPos, err := r.Positions.GetForUpdate(ctx, p.CompanyID, p.ProductID, p.DestSectorID, p.LotID)
	if err != nil {
		return nil, err
	}
	if destPos == nil {
		destPos = newPosition(p.CompanyID, p.ProductID, p.DestSectorID, p.LotID, p.Now)
	}
	destPos.UnitCost = inventory.WeightedAverageCost(destPos.QuantityOnHand, destPos.UnitCost, p.Quantity, originPos.UnitCost)
	destPos.QuantityOnHand = destPos.QuantityOnHand.Add(p.Quantity)
	destPos.LastMovementAt = p.Now
	if err := r.Positions.Upsert(ctx, destPos); err != nil {
		return nil, err
	}
	return originPos, nil
}

// InsertNumberedHeader asigna número de documento (empresa + código de tipo +
// año, consecutivo serializado en la tx) e inserta la cabecera. Ante un
// conflicto de unicidad reintenta con número regenerado un número acotado de
// veces antes de devolver el error.
func InsertNumberedHeader(ctx context.Context, r ports.Repos, m *entity.Movement, retries int) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	code := entity.MovementTypeCode(m.Type)
	year := m.Date.Year()
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		seq, err := r.Movements.NextDocumentNumber(ctx, m.CompanyID, code, year)
		if err != nil {
			return err
		}
		m.DocumentNumber = fmt.Sprintf("%s-%d-%06d", code, year, seq)
		err = r.Movements.CreateHeader(ctx, m)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrIntegrityConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// appendConfirmedMovement crea cabecera numerada + un item, ya en estado
// CONFIRMED (los efectos se aplicaron en esta misma transacción).
func appendConfirmedMovement(ctx context.Context, r ports.Repos, m *entity.Movement, item *entity.MovementItem, retries int) error {
	if err := InsertNumberedHeader(ctx, r, m, retries); err != nil {
		return err
	}
	item.ID = uuid.New().String()
	item.MovementID = m.ID
	if err := r.Movements.CreateItem(ctx, item); err != nil {
		return err
	}
	m.Items = []entity.MovementItem{*item}
	return nil
}

// checkLotCap verifica que sumar delta al on-hand agregado del lote no supere
// su cantidad inicial.
func checkLotCap(ctx context.Context, r ports.Repos, lot *entity.Lot, delta decimal.Decimal) error {
	sum, err := r.Positions.SumOnHandByLot(ctx, lot.CompanyID, lot.ID)
	if err != nil {
		return err
	}
	if sum.Add(delta).GreaterThan(lot.InitialQuantity) {
		return fmt.Errorf("lote %s: on-hand agregado superaría la cantidad inicial: %w", lot.Number, domain.ErrInvalidQuantity)
	}
	return nil
}

// reactivateIfConsumed vuelve a activar un lote consumido cuando le reingresa stock.
func reactivateIfConsumed(ctx context.Context, r ports.Repos, lot *entity.Lot) error {
	if lot.Status != entity.LotStatusConsumed {
		return nil
	}
	return r.Lots.UpdateStatus(ctx, lot.CompanyID, lot.ID, entity.LotStatusActive)
}

// newPosition crea una posición en cero lista para upsert.
func newPosition(companyID, productID, sectorID string, lotID *string, now time.Time) *entity.StockPosition {
	return &entity.StockPosition{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		ProductID:        productID,
		SectorID:         sectorID,
		LotID:            lotID,
		QuantityOnHand:   decimal.Zero,
		QuantityReserved: decimal.Zero,
		UnitCost:         decimal.Zero,
		LastMovementAt:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
