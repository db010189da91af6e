// Package auth verifies caller identity for API operations.
// Tokens are HS256 JWTs signed with a shared secret from config.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoIdentity is returned when an operation runs without a verified caller.
	ErrNoIdentity = errors.New("no verified caller identity")
)

// Identity is a verified caller. Subject is the owner key used to scope
// stored scans and profiles.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// Verifier issues and verifies HS256 tokens with a shared secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifier creates a Verifier. ttl bounds issued token lifetime;
// zero means the default of 24 hours.
func NewVerifier(secret string, ttl time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth secret not configured")
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Verifier{secret: []byte(secret), ttl: ttl}, nil
}

// IssueToken signs a token for the given identity.
func (v *Verifier) IssueToken(id Identity) (string, error) {
	if id.Subject == "" {
		return "", errors.New("empty subject")
	}

	claims := jwt.MapClaims{
		"sub": id.Subject,
		"exp": time.Now().Add(v.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	if id.Email != "" {
		claims["email"] = id.Email
	}
	if id.Role != "" {
		claims["role"] = id.Role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token string and returns the caller identity.
func (v *Verifier) VerifyToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return Identity{Subject: sub, Email: email, Role: role}, nil
}

type ctxKey struct{}

// WithIdentity attaches a verified identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the verified identity, or ErrNoIdentity if none.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.Subject == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
