package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zetas/barbershop/internal/core/domain"
)

// AdminCredentials holds the shared admin secret. PasswordHash (bcrypt)
// takes precedence over the plaintext Password when both are set.
type AdminCredentials struct {
	Password     string
	PasswordHash string
}

// AuthService exchanges the shared admin password for a signed, expiring
// session token and validates those tokens.
type AuthService struct {
	creds     AdminCredentials
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(creds AdminCredentials, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthService{creds: creds, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

func (s *AuthService) Login(_ context.Context, password string) (*domain.AdminSession, error) {
	if s.jwtSecret == "" || (s.creds.Password == "" && s.creds.PasswordHash == "") {
		return nil, domain.ErrAdminNotConfigured
	}
	if password == "" || !s.matches(password) {
		return nil, domain.ErrInvalidCredentials
	}

	expires := s.now().Add(s.tokenTTL)
	token, err := s.generateToken(expires)
	if err != nil {
		return nil, err
	}
	return &domain.AdminSession{Token: token, ExpiresAt: expires.UTC()}, nil
}

// Verify returns the role carried by a valid token.
func (s *AuthService) Verify(token string) (string, error) {
	if s.jwtSecret == "" {
		return "", domain.ErrAdminNotConfigured
	}
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidCredentials
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return "", errors.New("token carries no role")
	}
	return role, nil
}

func (s *AuthService) matches(password string) bool {
	if s.creds.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.creds.Password), []byte(password)) == 1
}

func (s *AuthService) generateToken(expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": domain.RoleAdmin,
		"iat":  s.now().Unix(),
		"exp":  expires.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
