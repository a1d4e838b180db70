package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// PositionRepository define el puerto de persistencia de posiciones de stock
// (producto + sector + lote opcional). Las operaciones condicionales expresan
// la guarda de validez en el mismo UPDATE para que dos escrituras concurrentes
// no puedan consumir el mismo margen.
type PositionRepository interface {
	// Get devuelve la posición o nil si no existe.
	Get(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil si no existe.
	GetForUpdate(ctx context.Context, companyID, productID, sectorID string, lotID *string) (*entity.StockPosition, error)
	// Upsert inserta o actualiza la posición completa (on-hand, reservado, costo).
	Upsert(ctx context.Context, pos *entity.StockPosition) error

	// ReserveIfAvailable incrementa lo reservado solo si disponible >= qty,
	// en una única sentencia condicional. Devuelve nil si no alcanza.
	ReserveIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error)
	// ReleaseReserved reduce lo reservado con piso en cero (clamp en la sentencia).
	// Devuelve nil si la posición no existe.
	ReleaseReserved(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error)
	// DeductIfAvailable reduce on-hand solo si disponible >= qty, en una única
	// sentencia condicional. Devuelve nil si no alcanza.
	DeductIfAvailable(ctx context.Context, companyID, productID, sectorID string, lotID *string, qty decimal.Decimal) (*entity.StockPosition, error)

	// SumOnHandByLot agrega el on-hand de todas las posiciones de un lote.
	SumOnHandByLot(ctx context.Context, companyID, lotID string) (decimal.Decimal, error)
	// ListBySector lista las posiciones de un sector (incluye las que están en cero).
	ListBySector(ctx context.Context, companyID, sectorID string) ([]*entity.StockPosition, error)
}
