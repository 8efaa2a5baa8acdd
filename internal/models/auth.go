package models

import "github.com/golang-jwt/jwt/v5"

// Role is an operator permission level on the adjustment API.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// JWTClaims represents the JWT payload for operator access tokens.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
