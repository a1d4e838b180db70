// Package jwt emite y valida los tokens de acceso de la API. El token carga la
// identidad del usuario, su empresa (tenant) y su rol, de modo que el RBAC y el
// filtrado multi-tenant de cada petición no consultan la base de datos.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims claims del token de acceso. uid/cid/role son los campos que el
// middleware traslada a los locals de la petición; cid delimita el tenant en
// toda la API (posiciones, lotes y movimientos se filtran siempre por empresa).
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	CompanyID string `json:"cid"`
	Role      string `json:"role"` // "admin" | "encargado" | "operario"
}

// Generate firma un token HS256 con la identidad, el tenant y el rol.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y vigencia y devuelve identidad, tenant y rol.
// Solo se acepta HS256: un token con otro algoritmo es inválido de entrada.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	if secret == "" {
		return "", "", "", fmt.Errorf("jwt: secret vacío")
	}
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", "", "", err
	}
	if !token.Valid {
		return "", "", "", fmt.Errorf("jwt: token inválido")
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
