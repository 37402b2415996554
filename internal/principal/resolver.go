package principal

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver deserializes a session token into a Principal.
type Resolver interface {
	Resolve(token string) (*Principal, error)
}

// sessionClaims are the claims the session collaborator signs into tokens.
type sessionClaims struct {
	TenantID       string `json:"tenant_id"`
	Role           string `json:"role"`
	ImpersonatorID string `json:"impersonator_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenResolver validates HS256 session tokens issued by the auth
// collaborator upstream of this core.
type TokenResolver struct {
	signingKey []byte
}

// NewTokenResolver creates a resolver verifying tokens with the shared
// signing key.
func NewTokenResolver(signingKey string) *TokenResolver {
	return &TokenResolver{signingKey: []byte(signingKey)}
}

// Resolve parses and verifies the token, returning the embedded principal.
// Expired or tampered tokens fail; an empty subject fails.
func (r *TokenResolver) Resolve(token string) (*Principal, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	p := &Principal{
		UserID:         claims.Subject,
		TenantID:       claims.TenantID,
		Role:           claims.Role,
		ImpersonatorID: claims.ImpersonatorID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
