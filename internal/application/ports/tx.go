package ports

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Positions repository.PositionRepository
	Lots      repository.LotRepository
	Movements repository.MovementRepository
	Products  repository.ProductRepository
	Sectors   repository.SectorRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: cualquier error de fn
// revierte todo lo hecho dentro (cabecera, items y posiciones juntos).
// El núcleo nunca abre transacciones anidadas: cada operación pública es una
// única transacción de punta a punta.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
