// Package auth issues and verifies the HMAC-signed access tokens accepted by
// the file service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims. Subject names the client
// the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for subject that expires after ttl.
func GenerateToken(subject string, secretKey []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// SubjectFromToken verifies tokenString and returns its subject.
// Expired tokens yield common.ErrTokenExpired, any other failure
// common.ErrInvalidToken.
func SubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
