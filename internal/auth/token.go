package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingToken indicates the request carried no session token.
	ErrMissingToken = errors.New("missing session token")
)

// Claims represents the session token claims.
type Claims struct {
	Username   string      `json:"username"`
	Level      AccessLevel `json:"level"`
	EmployeeID string      `json:"employeeId,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue signs a token for principal.
func (m *TokenManager) Issue(principal Principal) (string, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return "", errors.New("userID is required")
	}
	if !principal.Level.IsValid() {
		return "", fmt.Errorf("invalid access level %d", principal.Level)
	}

	now := time.Now().UTC()
	claims := Claims{
		Username:   principal.Username,
		Level:      principal.Level,
		EmployeeID: principal.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns the principal it names.
func (m *TokenManager) Parse(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" || !claims.Level.IsValid() {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:     claims.Subject,
		Username:   claims.Username,
		Level:      claims.Level,
		EmployeeID: claims.EmployeeID,
	}, nil
}
