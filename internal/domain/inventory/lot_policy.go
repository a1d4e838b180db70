package inventory

import (
	"fmt"
	"strings"
	"time"
)

// Clasificación de vencimiento de un lote.
const (
	LotSemVencimento = "SEM_VENCIMENTO" // sin fecha de vencimiento
	LotVencido       = "VENCIDO"        // vencido
	LotVencendo      = "VENCENDO"       // vence dentro de la ventana de alerta
	LotValido        = "VALIDO"
)

// DefaultExpiryWarningDays es la ventana de alerta por defecto para VENCENDO.
// Constante de política; configurable vía LOT_EXPIRY_WARNING_DAYS.
const DefaultExpiryWarningDays = 30

// ClassifyExpiry clasifica un lote según su fecha de vencimiento relativa a today.
// expiry nil -> SEM_VENCIMENTO; expiry <= today -> VENCIDO;
// expiry <= today+warningDays -> VENCENDO; si no, VALIDO.
func ClassifyExpiry(expiry *time.Time, today time.Time, warningDays int) string {
	if expiry == nil {
		return LotSemVencimento
	}
	if warningDays <= 0 {
		warningDays = DefaultExpiryWarningDays
	}
	// Se comparan días calendario, cada instante según su propia zona:
	// Truncate recortaría contra el epoch en UTC y correría el corte de día.
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	exp := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	if !exp.After(day) {
		return LotVencido
	}
	if !exp.After(day.AddDate(0, 0, warningDays)) {
		return LotVencendo
	}
	return LotValido
}

// LotPrefixFromCode deriva el prefijo de lote desde el código interno del
// producto: primeros tres caracteres en mayúsculas.
func LotPrefixFromCode(internalCode string) string {
	code := strings.ToUpper(strings.TrimSpace(internalCode))
	if len(code) > 3 {
		return code[:3]
	}
	if code == "" {
		return "LOT"
	}
	return code
}

// FormatLotNumber arma el número de lote: PREFIJO-AAAAMMDD-SECUENCIA.
// Ej.: ABC-20250101-0007
func FormatLotNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), seq)
}
