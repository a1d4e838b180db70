package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/application/ledger"
	"github.com/agrocampo/agro-inventario/internal/application/ports"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// Engine es el motor de movimientos: registra cabeceras e items como log
// inmutable, orquesta la transacción multi-item y despacha al Stock Ledger el
// efecto de cada línea. Es dueño del ciclo de estados y de la numeración de
// documentos.
type Engine struct {
	txRunner     ports.TxRunner
	ledger       *ledger.LedgerUseCase
	productRepo  repository.ProductRepository
	sectorRepo   repository.SectorRepository
	farmRepo     repository.FarmRepository
	lotRepo      repository.LotRepository
	movementRepo repository.MovementRepository
	policy       ledger.Policy
}

// NewEngine construye el motor de movimientos.
func NewEngine(
	txRunner ports.TxRunner,
	ldg *ledger.LedgerUseCase,
	productRepo repository.ProductRepository,
	sectorRepo repository.SectorRepository,
	farmRepo repository.FarmRepository,
	lotRepo repository.LotRepository,
	movementRepo repository.MovementRepository,
	policy ledger.Policy,
) *Engine {
	return &Engine{
		txRunner:     txRunner,
		ledger:       ldg,
		productRepo:  productRepo,
		sectorRepo:   sectorRepo,
		farmRepo:     farmRepo,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		policy:       policy,
	}
}

// CreateItemInput una línea del movimiento a crear.
type CreateItemInput struct {
	ProductID string
	LotID     *string
	Quantity  decimal.Decimal
	UnitValue decimal.Decimal
}

// CreateInput cabecera + items para CreateComplete.
type CreateInput struct {
	CompanyID           string
	ActorID             string
	FarmID              string
	Type                string
	Date                time.Time
	OriginSectorID      *string
	DestinationSectorID *string
	Notes               string
	Items               []CreateItemInput
}

// CreateComplete valida cabecera e items, abre una única transacción, inserta
// la cabecera numerada, aplica el efecto de cada item vía Stock Ledger, inserta
// las líneas y acumula el total. Cualquier falla de un item aborta el
// movimiento completo: la aplicación parcial no es un estado válido.
func (e *Engine) CreateComplete(ctx context.Context, in CreateInput) (*entity.Movement, error) {
	if err := e.validateCreate(ctx, &in); err != nil {
		return nil, err
	}

	now := time.Now()
	mov := &entity.Movement{
		ID:                  uuid.New().String(),
		CompanyID:           in.CompanyID,
		FarmID:              in.FarmID,
		Type:                in.Type,
		Date:                in.Date,
		OriginSectorID:      in.OriginSectorID,
		DestinationSectorID: in.DestinationSectorID,
		TotalValue:          decimal.Zero,
		Status:              entity.MovementStatusPending,
		Notes:               in.Notes,
		CreatedBy:           in.ActorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := ledger.InsertNumberedHeader(ctx, r, mov, e.policy.ConflictRetries); err != nil {
			return err
		}
		total := decimal.Zero
		for _, it := range in.Items {
			if err := e.applyItemInTx(ctx, r, mov, it, now); err != nil {
				return err
			}
			item := &entity.MovementItem{
				ID:         uuid.New().String(),
				MovementID: mov.ID,
				ProductID:  it.ProductID,
				LotID:      it.LotID,
				Quantity:   it.Quantity,
				UnitValue:  it.UnitValue,
				TotalValue: it.Quantity.Mul(it.UnitValue),
				CreatedAt:  now,
			}
			if err := r.Movements.CreateItem(ctx, item); err != nil {
				return err
			}
			mov.Items = append(mov.Items, *item)
			total = total.Add(item.TotalValue)
		}
		mov.TotalValue = total
		return r.Movements.UpdateTotal(ctx, mov.ID, total)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// applyItemInTx despacha al ledger el efecto que implica el tipo de movimiento.
func (e *Engine) applyItemInTx(ctx context.Context, r ports.Repos, mov *entity.Movement, it CreateItemInput, now time.Time) error {
	switch mov.Type {
	case entity.MovementTypeIN, entity.MovementTypeADJUSTIN:
		_, err := e.ledger.ApplyInboundInTx(ctx, r, ledger.InboundParams{
			CompanyID: mov.CompanyID,
			ProductID: it.ProductID,
			SectorID:  *mov.DestinationSectorID,
			LotID:     it.LotID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitValue,
			Now:       now,
		})
		return err
	case entity.MovementTypeOUT, entity.MovementTypeADJUSTOUT:
		_, err := e.ledger.ApplyOutboundInTx(ctx, r, ledger.OutboundParams{
			CompanyID: mov.CompanyID,
			ProductID: it.ProductID,
			SectorID:  *mov.OriginSectorID,
			LotID:     it.LotID,
			Quantity:  it.Quantity,
			Now:       now,
		})
		return err
	case entity.MovementTypeTRANSFER:
		_, err := e.ledger.TransferInTx(ctx, r, ledger.TransferParams{
			CompanyID:      mov.CompanyID,
			ProductID:      it.ProductID,
			OriginSectorID: *mov.OriginSectorID,
			DestSectorID:   *mov.DestinationSectorID,
			LotID:          it.LotID,
			Quantity:       it.Quantity,
			Now:            now,
		})
		return err
	}
	return domain.NewValidationError("movement_type")
}

// Approve transiciona pending -> approved. La aprobación es una compuerta de
// flujo para procesos aguas abajo; los efectos de stock ya se aplicaron al crear.
func (e *Engine) Approve(ctx context.Context, companyID, movementID, approverID string) (*entity.Movement, error) {
	return e.transition(ctx, companyID, movementID, func(m *entity.Movement, now time.Time) error {
		if m.Status != entity.MovementStatusPending {
			return fmt.Errorf("aprobar movimiento en estado %s: %w", m.Status, domain.ErrInvalidState)
		}
		m.Status = entity.MovementStatusApproved
		m.ApprovedBy = &approverID
		m.UpdatedAt = now
		return nil
	})
}

// Confirm transiciona approved -> confirmed. Confirmado es terminal: ya no se
// puede cancelar, solo compensar con un movimiento nuevo.
func (e *Engine) Confirm(ctx context.Context, companyID, movementID, actorID string) (*entity.Movement, error) {
	return e.transition(ctx, companyID, movementID, func(m *entity.Movement, now time.Time) error {
		if m.Status != entity.MovementStatusApproved {
			return fmt.Errorf("confirmar movimiento en estado %s: %w", m.Status, domain.ErrInvalidState)
		}
		m.Status = entity.MovementStatusConfirmed
		m.UpdatedAt = now
		return nil
	})
}

// transition aplica un cambio de estado bajo transacción.
func (e *Engine) transition(ctx context.Context, companyID, movementID string, fn func(m *entity.Movement, now time.Time) error) (*entity.Movement, error) {
	var mov *entity.Movement
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, companyID, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if err := fn(m, time.Now()); err != nil {
			return err
		}
		if err := r.Movements.UpdateStatus(ctx, m); err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// Cancel revierte los efectos del movimiento sobre las posiciones (genera el
// efecto inverso por cada item y un movimiento compensatorio auditable) y
// recién entonces marca la cabecera como cancelada. Solo es válido desde
// pending o approved; cancelar un cancelado o un confirmado es ErrInvalidState.
func (e *Engine) Cancel(ctx context.Context, companyID, movementID, actorID, reason string) (*entity.Movement, error) {
	var mov *entity.Movement
	err := e.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, companyID, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if m.Status != entity.MovementStatusPending && m.Status != entity.MovementStatusApproved {
			return fmt.Errorf("cancelar movimiento en estado %s: %w", m.Status, domain.ErrInvalidState)
		}
		now := time.Now()
		if err := e.applyInverseInTx(ctx, r, m, now); err != nil {
			return err
		}
		m.Status = entity.MovementStatusCancelled
		m.CancelledBy = &actorID
		m.CancelReason = reason
		m.UpdatedAt = now
		if err := r.Movements.UpdateStatus(ctx, m); err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// applyInverseInTx deshace el efecto de cada item y deja un movimiento
// compensatorio enlazado al original (ReversalOfID).
func (e *Engine) applyInverseInTx(ctx context.Context, r ports.Repos, m *entity.Movement, now time.Time) error {
	inverse := &entity.Movement{
		ID:                  uuid.New().String(),
		CompanyID:           m.CompanyID,
		FarmID:              m.FarmID,
		Type:                entity.InverseMovementType(m.Type),
		Date:                now,
		OriginSectorID:      m.DestinationSectorID,
		DestinationSectorID: m.OriginSectorID,
		TotalValue:          m.TotalValue,
		Status:              entity.MovementStatusConfirmed,
		Notes:               fmt.Sprintf("reversión de %s", m.DocumentNumber),
		CreatedBy:           m.CreatedBy,
		ReversalOfID:        &m.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := ledger.InsertNumberedHeader(ctx, r, inverse, e.policy.ConflictRetries); err != nil {
		return err
	}
	for _, it := range m.Items {
		var err error
		switch m.Type {
		case entity.MovementTypeIN, entity.MovementTypeADJUSTIN:
			// La entrada se revierte sacando del sector destino.
			_, err = e.ledger.ApplyOutboundInTx(ctx, r, ledger.OutboundParams{
				CompanyID: m.CompanyID,
				ProductID: it.ProductID,
				SectorID:  *m.DestinationSectorID,
				LotID:     it.LotID,
				Quantity:  it.Quantity,
				Now:       now,
			})
		case entity.MovementTypeOUT, entity.MovementTypeADJUSTOUT:
			// La salida se revierte reingresando al sector origen al valor del item.
			_, err = e.ledger.ApplyInboundInTx(ctx, r, ledger.InboundParams{
				CompanyID: m.CompanyID,
				ProductID: it.ProductID,
				SectorID:  *m.OriginSectorID,
				LotID:     it.LotID,
				Quantity:  it.Quantity,
				UnitCost:  it.UnitValue,
				Now:       now,
			})
		case entity.MovementTypeTRANSFER:
			// El traslado se revierte trasladando de vuelta destino -> origen.
			_, err = e.ledger.TransferInTx(ctx, r, ledger.TransferParams{
				CompanyID:      m.CompanyID,
				ProductID:      it.ProductID,
				OriginSectorID: *m.DestinationSectorID,
				DestSectorID:   *m.OriginSectorID,
				LotID:          it.LotID,
				Quantity:       it.Quantity,
				Now:            now,
			})
		default:
			err = fmt.Errorf("tipo %s no reversible: %w", m.Type, domain.ErrInvalidState)
		}
		if err != nil {
			return err
		}
		item := &entity.MovementItem{
			ID:         uuid.New().String(),
			MovementID: inverse.ID,
			ProductID:  it.ProductID,
			LotID:      it.LotID,
			Quantity:   it.Quantity,
			UnitValue:  it.UnitValue,
			TotalValue: it.TotalValue,
			CreatedAt:  now,
		}
		if err := r.Movements.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// GetByID devuelve un movimiento con items, o ErrNotFound.
func (e *Engine) GetByID(ctx context.Context, companyID, movementID string) (*entity.Movement, error) {
	m, err := e.movementRepo.GetByID(ctx, companyID, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// List lista movimientos de la empresa con filtros opcionales.
func (e *Engine) List(ctx context.Context, companyID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return e.movementRepo.List(ctx, companyID, f)
}
