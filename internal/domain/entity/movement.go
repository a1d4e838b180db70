package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN        = "IN"         // entrada
	MovementTypeOUT       = "OUT"        // salida
	MovementTypeTRANSFER  = "TRANSFER"   // traslado entre sectores
	MovementTypeADJUSTIN  = "ADJUST_IN"  // ajuste positivo
	MovementTypeADJUSTOUT = "ADJUST_OUT" // ajuste negativo
)

// Estados del ciclo de vida de un movimiento.
// pending -> approved -> confirmed; cancelled alcanzable desde pending y approved.
const (
	MovementStatusPending   = "PENDING"
	MovementStatusApproved  = "APPROVED"
	MovementStatusConfirmed = "CONFIRMED"
	MovementStatusCancelled = "CANCELLED"
)

// MovementTypeCode devuelve el código corto del tipo para la numeración de
// documentos (secuencia por empresa + código + año).
func MovementTypeCode(movementType string) string {
	switch movementType {
	case MovementTypeIN:
		return "ENT"
	case MovementTypeOUT:
		return "SAL"
	case MovementTypeTRANSFER:
		return "TRA"
	case MovementTypeADJUSTIN:
		return "AJE"
	case MovementTypeADJUSTOUT:
		return "AJS"
	}
	return "MOV"
}

// InverseMovementType devuelve el tipo compensatorio usado al cancelar:
// una salida se revierte con una entrada de las mismas cantidades y viceversa.
func InverseMovementType(movementType string) string {
	switch movementType {
	case MovementTypeIN, MovementTypeADJUSTIN:
		return MovementTypeOUT
	case MovementTypeOUT, MovementTypeADJUSTOUT:
		return MovementTypeIN
	}
	return movementType // TRANSFER se revierte invirtiendo origen/destino
}

// Movement es la cabecera inmutable de un evento de negocio que afecta stock.
// Se crea siempre junto con sus items, nunca sin ellos.
type Movement struct {
	ID                  string
	CompanyID           string
	FarmID              string
	Type                string // ver constantes MovementType*
	DocumentNumber      string // único por empresa + tipo + año
	Date                time.Time
	OriginSectorID      *string
	DestinationSectorID *string
	TotalValue          decimal.Decimal
	Status              string // ver constantes MovementStatus*
	Notes               string
	CreatedBy           string
	ApprovedBy          *string
	CancelledBy         *string
	CancelReason        string
	ReversalOfID        *string // id del movimiento que este compensa, si aplica
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Items []MovementItem
}

// MovementItem es una línea de un movimiento. Inmutable una vez confirmado el
// movimiento: las correcciones son movimientos nuevos.
type MovementItem struct {
	ID         string
	MovementID string
	ProductID  string
	LotID      *string
	Quantity   decimal.Decimal // > 0
	UnitValue  decimal.Decimal // >= 0
	TotalValue decimal.Decimal
	CreatedAt  time.Time
}
