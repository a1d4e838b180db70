package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidState       = errors.New("transición de estado inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrLotStillHasStock   = errors.New("el lote aún tiene stock")
	ErrIntegrityConflict  = errors.New("conflicto de integridad")
)

// ValidationError agrupa los campos inválidos de una entrada.
// Envuelve ErrInvalidInput para que errors.Is siga funcionando en los handlers.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye el error con la lista de campos ofensores.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ConflictError indica que el almacén rechazó la escritura por un constraint único
// (número de lote o de documento duplicado bajo carrera). Envuelve ErrIntegrityConflict.
type ConflictError struct {
	Constraint string
	Cause      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto de integridad (%s): %v", e.Constraint, e.Cause)
}

func (e *ConflictError) Unwrap() error { return ErrIntegrityConflict }
