package repository

import (
	"context"

	"github.com/agrocampo/agro-inventario/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia de empresas (tenants).
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	// GetByID devuelve la empresa o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// UserRepository define el puerto de persistencia de usuarios.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	// FindByEmail devuelve el usuario o nil si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByEmailAndCompany devuelve el usuario o nil si no existe en esa empresa.
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
}
