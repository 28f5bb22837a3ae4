package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

// TokenIssuer mints and verifies the signed access tokens handed out after a
// successful login. The subject claim is the rider's email, not the id; a
// token outlives any later email change (known limitation, carried over).
type TokenIssuer struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
	now       func() time.Time
}

func NewTokenIssuer(secretKey string, tokenTTL time.Duration, issuer string) *TokenIssuer {
	return &TokenIssuer{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		issuer:    issuer,
		now:       time.Now,
	}
}

// Issue mints a signed token for the verified principal. A nil principal is
// a programmer error: login never reaches issuance without one, so this
// panics rather than returning a normal error.
func (t *TokenIssuer) Issue(principal *Principal) (string, error) {
	if principal == nil {
		panic("auth: Issue called with nil principal")
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   principal.Email,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token, checks its signature and expiry, and returns the
// subject. The failure kinds are distinct so callers can tell "expired" from
// "forged" from "corrupt".
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secretKey, nil
	}, jwt.WithTimeFunc(t.now))

	switch {
	case err == nil && token.Valid:
		return claims.Subject, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", api.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "", api.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", api.ErrTokenMalformed
	default:
		return "", fmt.Errorf("%w: %v", api.ErrTokenMalformed, err)
	}
}
