package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/auth"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// AdminAuthService verifies the admin credential and issues tokens.
type AdminAuthService struct {
	passwordHash string
	tokens       *auth.TokenManager
	logger       *zap.Logger
}

// AdminAuthDependencies bundles collaborators for the admin auth service.
type AdminAuthDependencies struct {
	PasswordHash string
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// NewAdminAuthService constructs the service.
func NewAdminAuthService(deps AdminAuthDependencies) *AdminAuthService {
	return &AdminAuthService{
		passwordHash: deps.PasswordHash,
		tokens:       deps.TokenManager,
		logger:       loggerOrNop(deps.Logger),
	}
}

// LoginResult is returned on successful admin login.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Login checks password against the configured hash.
func (s *AdminAuthService) Login(ctx context.Context, password string) (*LoginResult, error) {
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.NewValidationError("Password is required", nil)
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		s.logger.Warn("admin login rejected")
		return nil, apperrors.NewUnauthorized("Invalid password")
	}

	token, expiresAt, err := s.tokens.GenerateToken(auth.AdminID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("admin login succeeded")
	return &LoginResult{Token: token, ExpiresIn: s.tokens.TTL(), ExpiresAt: expiresAt}, nil
}
