package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the caller's role as asserted by the backend.
type Role string

const (
	// RoleManager may change printer and zone configuration.
	RoleManager Role = "manager"

	// RoleOperator may dispatch orders and read configuration.
	RoleOperator Role = "operator"
)

// ErrTokenInvalid is returned for malformed, mis-signed, or expired tokens.
var ErrTokenInvalid = errors.New("auth: invalid token")

// Claims are the JWT claims carried by backend-issued tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role     Role   `json:"role"`
	DeviceID string `json:"device_id,omitempty"`
}

// GenerateToken creates a signed token. The backend is the normal issuer;
// this exists for provisioning tooling and tests.
func GenerateToken(subject string, role Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token's signature and expiry and returns its claims.
// Only HS256 is accepted; tokens signed with any other method are rejected.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrTokenInvalid)
	}

	return claims, nil
}
