package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/registration-service/internal/auth"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

func newAdminAuth(t *testing.T) (*AdminAuthService, *auth.TokenManager) {
	t.Helper()
	hash, err := auth.HashPassword("Welcome2025!", bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	return NewAdminAuthService(AdminAuthDependencies{PasswordHash: hash, TokenManager: tokens}), tokens
}

func TestAdminAuthService_Login(t *testing.T) {
	svc, tokens := newAdminAuth(t)

	res, err := svc.Login(context.Background(), "Welcome2025!")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, res.ExpiresIn)

	claims, err := tokens.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminID, claims.AdminID)
}

func TestAdminAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAdminAuth(t)

	_, err := svc.Login(context.Background(), "")
	requireCode(t, err, apperrors.CodeInvalidInput)
	assert.Equal(t, "Password is required", apperrors.ToDomainError(err).Message)

	_, err = svc.Login(context.Background(), "wrong")
	requireCode(t, err, apperrors.CodeUnauthorized)
	assert.Equal(t, "Invalid password", apperrors.ToDomainError(err).Message)
}
