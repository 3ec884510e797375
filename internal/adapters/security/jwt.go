// Package security verifies the bearer credentials callers present to the
// transport adapters. The engine itself only ever sees a resolved principal.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ticketrail/settlement/internal/domain"
)

// PrincipalVerifier parses HS256 tokens whose subject is the caller's
// account address. Keys are held at adapter level so the application layer
// stays crypto-library agnostic.
type PrincipalVerifier struct {
	secret []byte
	leeway time.Duration
}

func NewPrincipalVerifier(secret string) (*PrincipalVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &PrincipalVerifier{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// Verify returns the principal address carried in the token's subject claim.
func (v *PrincipalVerifier) Verify(tokenRaw string) (common.Address, error) {
	token, err := jwt.Parse(tokenRaw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return common.Address{}, domain.ErrUnauthorized
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return common.Address{}, domain.ErrUnauthorized
	}
	principal, err := domain.ParseAddress(sub)
	if err != nil {
		return common.Address{}, domain.ErrUnauthorized
	}
	return principal, nil
}

// Issue mints a token for a principal. Exists for local tooling and tests;
// production tokens come from the platform's identity service.
func (v *PrincipalVerifier) Issue(principal common.Address, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   principal.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(v.secret)
}
