package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity quién firma cada comando: vendedor dueño del stock y descriptor del actor.
type Identity struct {
	UserID    string
	SellerID  string
	ActorType string // EMPLOYEE | SELLER | SYSTEM | CUSTOMER
	Name      string
}

// Claims incluye los claims estándar JWT más el descriptor de actor.
// El middleware arma el Actor sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	SellerID  string `json:"seller_id"`
	ActorType string `json:"actor_type"`
	Name      string `json:"name,omitempty"`
}

// Generate genera un token JWT firmado con la identidad del actor.
func Generate(secret, issuer string, expMinutes int, id Identity) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    id.UserID,
		SellerID:  id.SellerID,
		ActorType: id.ActorType,
		Name:      id.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" || claims.SellerID == "" {
		return Identity{}, fmt.Errorf("claims sin user_id o seller_id")
	}
	return Identity{
		UserID:    claims.UserID,
		SellerID:  claims.SellerID,
		ActorType: claims.ActorType,
		Name:      claims.Name,
	}, nil
}
