package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by a session token.
type Claims struct {
	MemberID string `json:"id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed session credential and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func signToken(id, email string, secret []byte, issuedAt time.Time, ttl time.Duration) (Token, error) {
	iat := jwt.NewNumericDate(issuedAt)
	exp := jwt.NewNumericDate(issuedAt.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		MemberID: id,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp.Time}, nil
}

// parseToken verifies signature, algorithm and expiry. Every failure maps to ErrInvalidToken.
func parseToken(raw string, secret []byte, now func() time.Time) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.MemberID == "" {
		return Claims{}, fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return claims, nil
}

// IsExpired reports whether a validation error was caused by token expiry.
// Callers use it for logging only; clients see the same status for every invalid token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
