package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"` // campos ofensores en errores de validación
}
