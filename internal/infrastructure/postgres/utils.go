package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agrocampo/agro-inventario/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return strings.Contains(err.Error(), "23503")
}

// asConflict traduce violaciones de unicidad/FK al error de dominio tipado;
// cualquier otro error se devuelve tal cual.
func asConflict(err error, constraint string) error {
	if isUniqueViolation(err) || isForeignKeyViolation(err) {
		return &domain.ConflictError{Constraint: constraint, Cause: err}
	}
	return err
}
