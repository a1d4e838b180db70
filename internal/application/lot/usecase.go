package lot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/application/ports"
	"github.com/agrocampo/agro-inventario/internal/domain"
	"github.com/agrocampo/agro-inventario/internal/domain/entity"
	"github.com/agrocampo/agro-inventario/internal/domain/inventory"
	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// Config política del rastreador de lotes.
type Config struct {
	ExpiryWarningDays int // ventana para clasificar VENCENDO
	ConflictRetries   int // reintentos de numeración autogenerada ante conflicto
}

// TrackerUseCase gestiona el ciclo de vida de lotes: creación con numeración
// autogenerada, clasificación de vencimiento y marcado de consumo.
type TrackerUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	cfg         Config
}

// NewTrackerUseCase construye el rastreador de lotes.
func NewTrackerUseCase(txRunner ports.TxRunner, productRepo repository.ProductRepository, lotRepo repository.LotRepository, cfg Config) *TrackerUseCase {
	if cfg.ExpiryWarningDays <= 0 {
		cfg.ExpiryWarningDays = inventory.DefaultExpiryWarningDays
	}
	if cfg.ConflictRetries < 0 {
		cfg.ConflictRetries = 0
	}
	return &TrackerUseCase{txRunner: txRunner, productRepo: productRepo, lotRepo: lotRepo, cfg: cfg}
}

// CreateLotInput entrada para crear un lote. Number vacío = autogenerar.
type CreateLotInput struct {
	CompanyID       string
	ActorID         string
	ProductID       string
	Number          string
	ManufactureDate time.Time
	ExpiryDate      *time.Time
	InitialQuantity decimal.Decimal
}

// CreateLot crea el lote antes de que cualquier movimiento lo referencie.
// Si el caller no manda número se genera PREFIJO-FECHA-SECUENCIA dentro de la
// misma transacción; un choque de unicidad con número autogenerado se reintenta
// con número regenerado un número acotado de veces.
func (uc *TrackerUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	var fields []string
	if in.ProductID == "" {
		fields = append(fields, "product_id")
	}
	if in.ManufactureDate.IsZero() {
		fields = append(fields, "manufacture_date")
	}
	if !in.InitialQuantity.GreaterThan(decimal.Zero) {
		fields = append(fields, "initial_quantity")
	}
	if in.ExpiryDate != nil && in.ManufactureDate.After(*in.ExpiryDate) {
		fields = append(fields, "expiry_date")
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}
	product, err := uc.checkProduct(ctx, in.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if in.Number != "" {
		unique, err := uc.IsNumberUnique(ctx, in.CompanyID, in.ProductID, in.Number, "")
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, domain.ErrDuplicate
		}
	}

	now := time.Now()
	lot := &entity.Lot{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		ProductID:       in.ProductID,
		Number:          strings.TrimSpace(in.Number),
		ManufactureDate: in.ManufactureDate,
		ExpiryDate:      in.ExpiryDate,
		InitialQuantity: in.InitialQuantity,
		Status:          entity.LotStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	autoNumbered := lot.Number == ""
	prefix := inventory.LotPrefixFromCode(product.InternalCode)

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var lastErr error
		for attempt := 0; attempt <= uc.cfg.ConflictRetries; attempt++ {
			if autoNumbered {
				seq, err := r.Lots.NextSequence(ctx, in.CompanyID, in.ProductID)
				if err != nil {
					return err
				}
				lot.Number = inventory.FormatLotNumber(prefix, now, seq)
			}
			err := r.Lots.Create(ctx, lot)
			if err == nil {
				return nil
			}
			// Solo el número autogenerado se regenera; con número del caller
			// el conflicto sube tal cual.
			if !autoNumbered || !errors.Is(err, domain.ErrIntegrityConflict) {
				return err
			}
			lastErr = err
		}
		return lastErr
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// GenerateNumber deriva el prefijo del código interno del producto (tres
// primeros caracteres) salvo que el caller mande uno, y arma
// PREFIJO-AAAAMMDD-SECUENCIA con el consecutivo por producto.
func (uc *TrackerUseCase) GenerateNumber(ctx context.Context, companyID, productID, prefix string) (string, error) {
	product, err := uc.checkProduct(ctx, companyID, productID)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		prefix = inventory.LotPrefixFromCode(product.InternalCode)
	} else {
		prefix = strings.ToUpper(strings.TrimSpace(prefix))
	}
	var number string
	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		seq, err := r.Lots.NextSequence(ctx, companyID, productID)
		if err != nil {
			return err
		}
		number = inventory.FormatLotNumber(prefix, time.Now(), seq)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// Classify clasifica el vencimiento del lote con la ventana configurada.
func (uc *TrackerUseCase) Classify(l *entity.Lot) string {
	return inventory.ClassifyExpiry(l.ExpiryDate, time.Now(), uc.cfg.ExpiryWarningDays)
}

// MarkConsumed marca el lote como consumido solo si el on-hand agregado de
// todas sus posiciones es exactamente cero; si queda stock devuelve
// ErrLotStillHasStock. Marcar un lote ya consumido es idempotente.
func (uc *TrackerUseCase) MarkConsumed(ctx context.Context, companyID, lotID, actorID string) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		l, err := r.Lots.GetByID(ctx, companyID, lotID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		if l.Status == entity.LotStatusConsumed {
			lot = l
			return nil
		}
		remaining, err := r.Positions.SumOnHandByLot(ctx, companyID, lotID)
		if err != nil {
			return err
		}
		if !remaining.IsZero() {
			return domain.ErrLotStillHasStock
		}
		if err := r.Lots.UpdateStatus(ctx, companyID, lotID, entity.LotStatusConsumed); err != nil {
			return err
		}
		l.Status = entity.LotStatusConsumed
		l.UpdatedAt = time.Now()
		lot = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// IsNumberUnique indica si el número está libre dentro del producto
// (case-insensitive). excludeID permite excluir el propio lote en ediciones.
func (uc *TrackerUseCase) IsNumberUnique(ctx context.Context, companyID, productID, number, excludeID string) (bool, error) {
	existing, err := uc.lotRepo.GetByNumber(ctx, companyID, productID, number)
	if err != nil {
		return false, err
	}
	if existing == nil || existing.ID == excludeID {
		return true, nil
	}
	return false, nil
}

// ListByProduct lista los lotes de un producto de la empresa.
func (uc *TrackerUseCase) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Lot, error) {
	if _, err := uc.checkProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	return uc.lotRepo.ListByProduct(ctx, companyID, productID)
}

func (uc *TrackerUseCase) checkProduct(ctx context.Context, companyID, productID string) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
