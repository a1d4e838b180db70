package dto

// RegisterRequest alta de usuario dentro de una empresa.
type RegisterRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid4"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=admin encargado operario"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse proyección pública de un usuario (sin hash).
type UserResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// LoginResponse token + usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
