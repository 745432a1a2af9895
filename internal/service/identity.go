package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cocodry/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Domain errors for token checks.
var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the dashboard's operator token claims. Older tokens carry the
// email only in the subject.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// IdentityService resolves the current operator from a bearer token signed
// by the dashboard with a shared HMAC secret.
type IdentityService struct {
	signingKey []byte
}

func NewIdentityService(secret string) *IdentityService {
	return &IdentityService{signingKey: []byte(secret)}
}

// ParseToken validates the token and returns the operator it names.
func (s *IdentityService) ParseToken(accessToken string) (models.Operator, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return models.Operator{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Operator{}, ErrInvalidToken
	}
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		email = strings.TrimSpace(claims.Subject)
	}
	if email == "" {
		return models.Operator{}, ErrInvalidToken
	}
	return models.Operator{Email: email, Role: claims.Role}, nil
}

// IssueToken signs a token for op. The service itself never logs anyone
// in; this exists for local runs against the simulator and for tests.
func (s *IdentityService) IssueToken(op models.Operator, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: op.Email,
		Role:  op.Role,
	})
	return token.SignedString(s.signingKey)
}
