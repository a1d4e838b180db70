package repository

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes.
type LotRepository interface {
	// Create persiste el lote. Devuelve ConflictError si el número ya existe
	// para el producto (constraint único case-insensitive).
	Create(ctx context.Context, lot *entity.Lot) error
	// GetByID devuelve el lote o nil si no existe o no es de la empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.Lot, error)
	// GetByNumber busca por número dentro del producto, sin distinguir mayúsculas.
	GetByNumber(ctx context.Context, companyID, productID, number string) (*entity.Lot, error)
	// UpdateStatus cambia el estado del lote (active/consumed).
	UpdateStatus(ctx context.Context, companyID, id, status string) error
	// NextSequence devuelve el siguiente consecutivo de numeración por producto,
	// serializado dentro de la transacción en curso.
	NextSequence(ctx context.Context, companyID, productID string) (int64, error)
	// ListByProduct lista los lotes de un producto.
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.Lot, error)
	// ListActive lista los lotes activos de la empresa (para reportes de vencimiento).
	ListActive(ctx context.Context, companyID string) ([]*entity.Lot, error)
}
