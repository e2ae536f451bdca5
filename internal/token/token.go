package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roamio/tripplanner/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour

	kindAccess  = "access"
	kindRefresh = "refresh"
)

var ErrInvalidToken = fmt.Errorf("invalid or expired token")

// Claims is the decoded identity attached to a request: subject id,
// role and which token kind carried it.
type Claims struct {
	UserID uint
	Role   models.Role
	Kind   string
}

type claims struct {
	Role string `json:"role,omitempty"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed access/refresh tokens. It keeps
// no state beyond the signing key.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

func (s *Service) SignAccess(userID uint, role models.Role) (string, error) {
	return s.sign(userID, string(role), kindAccess, AccessTTL)
}

func (s *Service) SignRefresh(userID uint) (string, error) {
	return s.sign(userID, "", kindRefresh, RefreshTTL)
}

func (s *Service) sign(userID uint, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// ParseAccess verifies an access token. Refresh tokens are rejected so
// a long-lived refresh token can never authenticate a request directly.
func (s *Service) ParseAccess(tokenStr string) (*Claims, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Kind != kindAccess {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (s *Service) ParseRefresh(tokenStr string) (*Claims, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Kind != kindRefresh {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (s *Service) parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := t.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: uint(id),
		Role:   models.Role(c.Role),
		Kind:   c.Kind,
	}, nil
}

func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}
	return nil
}
