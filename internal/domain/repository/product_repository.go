package repository

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia de productos.
// El núcleo lo usa sobre todo para revalidar pertenencia al tenant.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	// GetByID devuelve el producto o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
}
