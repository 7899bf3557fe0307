package jwtauth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"stayhub/internal/domain"
)

type claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 bearer tokens carrying user id + role.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(userID string, role domain.Role) (string, error) {
	now := time.Now()
	c := claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Verify returns the user id and role from a valid token, or
// domain.CodeUnauthorized for anything malformed, forged, or expired.
func (m *Manager) Verify(token string) (string, domain.Role, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.E(domain.CodeUnauthorized)
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || c.UserID == "" {
		return "", "", domain.E(domain.CodeUnauthorized)
	}
	role := domain.Role(c.Role)
	if role != domain.RoleCustomer && role != domain.RoleOwner {
		return "", "", domain.E(domain.CodeUnauthorized)
	}
	return c.UserID, role, nil
}
