package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims represents the typed JWT minted by the managed identity
// backend. The API only verifies the signature and reads the account scope.
type AccessTokenClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	jwt.RegisteredClaims
}
