// Package auth issues and validates operator access tokens (HS256 JWT).
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "orbitcheck"

// Claims carries the standard registered claims plus the operator id.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID string `json:"operator_id"`
}

func GenerateToken(operatorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		OperatorID: operatorID,
	})

	return token.SignedString(secretKey)
}

// GetOperatorIDFromToken validates tokenString and returns its operator id.
// An expired token yields common.ErrTokenExpired, any other failure
// common.ErrInvalidToken.
func GetOperatorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.OperatorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.OperatorID, nil
}
