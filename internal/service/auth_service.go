package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"walink/internal/domain"
	"walink/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminSubject is the subject of every admin session token
const AdminSubject = "admin"

var errNoPassword = errors.New("password is required")

type adminClaims struct {
	jwt.RegisteredClaims
}

// Session is an issued admin token
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService verifies the admin password and issues signed session tokens
type AuthService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService accepts a bcrypt hash; an empty hash disables login entirely
func NewAuthService(passwordHash, jwtSecret string, ttl time.Duration, logger *slog.Logger) (*AuthService, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
	}
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &AuthService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(jwtSecret),
		ttl:          ttl,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errNoPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the password and issues a session
func (s *AuthService) Login(ctx context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, domain.NewValidationError(errNoPassword)
	}
	if len(s.passwordHash) == 0 {
		logger.ForContext(ctx, s.logger).Warn("admin login attempted but no admin password is configured")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		logger.ForContext(ctx, s.logger).Warn("admin login failed")
		return nil, domain.ErrUnauthorized
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.ForContext(ctx, s.logger).Info("admin logged in")
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify returns ErrUnauthorized for missing, expired, forged or foreign tokens
func (s *AuthService) Verify(tokenStr string) error {
	if tokenStr == "" {
		return domain.ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenStr, &adminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid || claims.Subject != AdminSubject {
		return domain.ErrUnauthorized
	}
	return nil
}

// Check reports whether tokenStr is a valid session; it never fails
func (s *AuthService) Check(tokenStr string) bool {
	return s.Verify(tokenStr) == nil
}

// TTL is the lifetime of issued sessions
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}
