package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos.
type MovementFilter struct {
	Type   string
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MovementRepository define el puerto de persistencia del log de movimientos
// (cabecera + items, append-only).
type MovementRepository interface {
	// CreateHeader inserta la cabecera. Devuelve ConflictError si el número de
	// documento choca bajo carrera.
	CreateHeader(ctx context.Context, m *entity.Movement) error
	// CreateItem inserta una línea del movimiento.
	CreateItem(ctx context.Context, item *entity.MovementItem) error
	// UpdateTotal escribe el total acumulado en la cabecera.
	UpdateTotal(ctx context.Context, movementID string, total decimal.Decimal) error
	// UpdateStatus persiste una transición de estado (con approved/cancelled by).
	UpdateStatus(ctx context.Context, m *entity.Movement) error
	// GetByID devuelve el movimiento con sus items, o nil si no existe o no es
	// de la empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.Movement, error)
	// List lista cabeceras de la empresa aplicando los filtros.
	List(ctx context.Context, companyID string, f MovementFilter) ([]*entity.Movement, error)
	// NextDocumentNumber devuelve el siguiente consecutivo por empresa + código
	// de tipo + año, serializado dentro de la transacción en curso (la fila de
	// secuencia queda bloqueada hasta el commit).
	NextDocumentNumber(ctx context.Context, companyID, typeCode string, year int) (int64, error)
}
