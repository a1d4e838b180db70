package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/application/ports"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// Policy parámetros de comportamiento del ledger.
// StrictRelease: si true, liberar más de lo reservado falla en vez de recortar a cero
// (el recorte silencioso está marcado como posible fuente de descuadre; ver DESIGN.md).
// ConflictRetries: reintentos con identificador regenerado ante conflicto de unicidad
// en números autogenerados (documento, lote).
type Policy struct {
	StrictRelease   bool
	ConflictRetries int
}

// DefaultPolicy valores por defecto de la política del ledger.
func DefaultPolicy() Policy {
	return Policy{StrictRelease: false, ConflictRetries: 1}
}

// LedgerUseCase es la API de mutación sobre las posiciones de stock:
// adjust, reserve, release y transfer. Es el único componente autorizado a
// escribir posiciones; cada operación pública corre en una única transacción.
type LedgerUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	sectorRepo  repository.SectorRepository
	lotRepo     repository.LotRepository
	policy      Policy
}

// NewLedgerUseCase construye el caso de uso del ledger.
func NewLedgerUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	sectorRepo repository.SectorRepository,
	lotRepo repository.LotRepository,
	policy Policy,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		sectorRepo:  sectorRepo,
		lotRepo:     lotRepo,
		policy:      policy,
	}
}

// AdjustInput entrada para fijar el on-hand de una posición en un valor absoluto.
type AdjustInput struct {
	CompanyID   string
	ActorID     string
	ProductID   string
	SectorID    string
	LotID       *string
	NewQuantity decimal.Decimal
	Reason      string
}

// AdjustResult resultado de un ajuste: cantidades previa y nueva, y el delta aplicado.
type AdjustResult struct {
	Previous decimal.Decimal
	New      decimal.Decimal
	Delta    decimal.Decimal
}

// Adjust fija el on-hand en un valor absoluto y registra un movimiento de
// ajuste compensatorio (positivo o negativo) para que el cambio quede auditado:
// un ajuste nunca es una escritura silenciosa. Falla con ErrInvalidQuantity si
// la nueva cantidad es negativa, y con ErrInsufficientStock si dejaría el
// on-hand por debajo de lo ya reservado.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.NewQuantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := uc.checkProduct(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	sector, err := uc.checkSector(ctx, in.CompanyID, in.SectorID)
	if err != nil {
		return nil, err
	}
	lot, err := uc.checkLot(ctx, in.CompanyID, in.ProductID, in.LotID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var result *AdjustResult
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		pos, err := r.Positions.GetForUpdate(ctx, in.CompanyID, in.ProductID, in.SectorID, in.LotID)
		if err != nil {
			return err
		}
		if pos == nil {
			pos = newPosition(in.CompanyID, in.ProductID, in.SectorID, in.LotID, now)
		}
		previous := pos.QuantityOnHand
		delta := in.NewQuantity.Sub(previous)
		result = &AdjustResult{Previous: previous, New: in.NewQuantity, Delta: delta}
		if delta.IsZero() {
			// Recuento que coincide con el sistema: nada que aplicar ni auditar.
			return nil
		}
		if in.NewQuantity.LessThan(pos.QuantityReserved) {
			// Bajar el on-hand por debajo de lo reservado dejaría disponible negativo.
			return domain.ErrInsufficientStock
		}
		if delta.GreaterThan(decimal.Zero) && lot != nil {
			if err := checkLotCap(ctx, r, lot, delta); err != nil {
				return err
			}
			if err := reactivateIfConsumed(ctx, r, lot); err != nil {
				return err
			}
		}
		// El ajuste no trae costo nuevo: el promedio se recalcula con el costo
		// vigente de la posición, por lo que queda igual.
		pos.QuantityOnHand = in.NewQuantity
		pos.LastMovementAt = now
		if err := r.Positions.Upsert(ctx, pos); err != nil {
			return err
		}

		movType := entity.MovementTypeADJUSTIN
		qty := delta
		origin, dest := (*string)(nil), &in.SectorID
		if delta.LessThan(decimal.Zero) {
			movType = entity.MovementTypeADJUSTOUT
			qty = delta.Neg()
			origin, dest = &in.SectorID, nil
		}
		mov := &entity.Movement{
			CompanyID:           in.CompanyID,
			FarmID:              sector.FarmID,
			Type:                movType,
			Date:                now,
			OriginSectorID:      origin,
			DestinationSectorID: dest,
			TotalValue:          qty.Mul(pos.UnitCost),
			Status:              entity.MovementStatusConfirmed,
			Notes:               in.Reason,
			CreatedBy:           in.ActorID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		item := &entity.MovementItem{
			ProductID:  product.ID,
			LotID:      in.LotID,
			Quantity:   qty,
			UnitValue:  pos.UnitCost,
			TotalValue: qty.Mul(pos.UnitCost),
			CreatedAt:  now,
		}
		return appendConfirmedMovement(ctx, r, mov, item, uc.policy.ConflictRetries)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReserveInput entrada para una reserva blanda sobre el disponible.
type ReserveInput struct {
	CompanyID string
	ProductID string
	SectorID  string
	LotID     *string
	Quantity  decimal.Decimal
}

// Reserve incrementa lo reservado solo si el disponible alcanza. La guarda va
// en la misma sentencia condicional que define la validez, de modo que dos
// reservas concurrentes no puedan consumir el mismo margen. Devuelve nil (sin
// error) si no hay disponible suficiente: el caller decide cómo tratarlo.
func (uc *LedgerUseCase) Reserve(ctx context.Context, in ReserveInput) (*entity.StockPosition, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity")
	}
	if _, err := uc.checkProduct(ctx, in.CompanyID, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := uc.checkSector(ctx, in.CompanyID, in.SectorID); err != nil {
		return nil, err
	}
	if _, err := uc.checkLot(ctx, in.CompanyID, in.ProductID, in.LotID); err != nil {
		return nil, err
	}
	var pos *entity.StockPosition
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		pos, err = r.Positions.ReserveIfAvailable(ctx, in.CompanyID, in.ProductID, in.SectorID, in.LotID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// Release reduce lo reservado. En modo tolerante (por defecto) liberar más de
// lo reservado recorta a cero y no falla; en modo estricto devuelve error de
// validación. Nunca deja reservado negativo.
func (uc *LedgerUseCase) Release(ctx context.Context, in ReserveInput) (*entity.StockPosition, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity")
	}
	if _, err := uc.checkProduct(ctx, in.CompanyID, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := uc.checkSector(ctx, in.CompanyID, in.SectorID); err != nil {
		return nil, err
	}
	if _, err := uc.checkLot(ctx, in.CompanyID, in.ProductID, in.LotID); err != nil {
		return nil, err
	}
	var pos *entity.StockPosition
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if uc.policy.StrictRelease {
			current, err := r.Positions.GetForUpdate(ctx, in.CompanyID, in.ProductID, in.SectorID, in.LotID)
			if err != nil {
				return err
			}
			if current == nil || current.QuantityReserved.LessThan(in.Quantity) {
				return domain.NewValidationError("quantity")
			}
		}
		var err error
		pos, err = r.Positions.ReleaseReserved(ctx, in.CompanyID, in.ProductID, in.SectorID, in.LotID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	if pos == nil {
		// Posición inexistente: no hay nada reservado que liberar. Se devuelve
		// la posición en cero para mantener el contrato de "nunca falla", sin
		// persistir nada; el ID queda vacío porque ninguna fila la respalda.
		pos = &entity.StockPosition{
			CompanyID:        in.CompanyID,
			ProductID:        in.ProductID,
			SectorID:         in.SectorID,
			LotID:            in.LotID,
			QuantityOnHand:   decimal.Zero,
			QuantityReserved: decimal.Zero,
			UnitCost:         decimal.Zero,
			LastMovementAt:   time.Now(),
		}
	}
	return pos, nil
}

// TransferInput entrada para un traslado entre sectores.
type TransferInput struct {
	CompanyID      string
	ActorID        string
	ProductID      string
	OriginSectorID string
	DestSectorID   string
	LotID          *string
	Quantity       decimal.Decimal
}

// TransferResult identifica el movimiento de auditoría creado por el traslado.
type TransferResult struct {
	MovementID string
	Quantity   decimal.Decimal
}

// Transfer descuenta on-hand en el sector origen (ErrInsufficientStock si el
// disponible no alcanza) y lo suma en destino, trasladando el costo promedio
// de origen: un traslado interno no es una venta y no altera la base de costo.
// Deja un movimiento TRANSFER de un solo item como rastro auditable. Todo en
// una única transacción.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError("quantity")
	}
	if in.OriginSectorID == in.DestSectorID {
		return nil, domain.NewValidationError("destination_sector_id")
	}
	product, err := uc.checkProduct(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	origin, err := uc.checkSector(ctx, in.CompanyID, in.OriginSectorID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.checkSector(ctx, in.CompanyID, in.DestSectorID); err != nil {
		return nil, err
	}
	if _, err := uc.checkLot(ctx, in.CompanyID, in.ProductID, in.LotID); err != nil {
		return nil, err
	}

	now := time.Now()
	var result *TransferResult
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		originPos, err := uc.TransferInTx(ctx, r, TransferParams{
			CompanyID:      in.CompanyID,
			ProductID:      in.ProductID,
			OriginSectorID: in.OriginSectorID,
			DestSectorID:   in.DestSectorID,
			LotID:          in.LotID,
			Quantity:       in.Quantity,
			Now:            now,
		})
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			CompanyID:           in.CompanyID,
			FarmID:              origin.FarmID,
			Type:                entity.MovementTypeTRANSFER,
			Date:                now,
			OriginSectorID:      &in.OriginSectorID,
			DestinationSectorID: &in.DestSectorID,
			TotalValue:          in.Quantity.Mul(originPos.UnitCost),
			Status:              entity.MovementStatusConfirmed,
			CreatedBy:           in.ActorID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		item := &entity.MovementItem{
			ProductID:  product.ID,
			LotID:      in.LotID,
			Quantity:   in.Quantity,
			UnitValue:  originPos.UnitCost,
			TotalValue: in.Quantity.Mul(originPos.UnitCost),
			CreatedAt:  now,
		}
		if err := appendConfirmedMovement(ctx, r, mov, item, uc.policy.ConflictRetries); err != nil {
			return err
		}
		result = &TransferResult{MovementID: mov.ID, Quantity: in.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
