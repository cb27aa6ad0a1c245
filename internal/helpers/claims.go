package helpers

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Helper methods for role checking
func (ac *AdminClaims) IsAdmin() bool {
	return ac.HasRole(RoleAdmin)
}

func (ac *AdminClaims) HasRole(role string) bool {
	return ac.Role == role
}
