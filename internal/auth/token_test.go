package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", 24*time.Hour).WithClock(func() time.Time { return issued })

	token, exp, err := tm.GenerateToken(AdminID)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), exp)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, AdminID, claims.AdminID)
	assert.Equal(t, issued.UnixMilli(), claims.Timestamp)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", 24*time.Hour).WithClock(func() time.Time { return now })
	token, _, err := tm.GenerateToken(AdminID)
	require.NoError(t, err)

	now = now.Add(24*time.Hour + time.Second)
	_, err = tm.ParseToken(token)
	require.Error(t, err)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).GenerateToken(AdminID)
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseToken(token)
	require.Error(t, err)

	_, err = NewTokenManager("one", time.Hour).ParseToken("not-a-jwt")
	require.Error(t, err)
}

func TestPassword_HashAndCompare(t *testing.T) {
	hash, err := HashPassword("Welcome2025!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "Welcome2025!"))
	require.Error(t, ComparePassword(hash, "welcome2025!"))
}

func TestResolveAdminHash(t *testing.T) {
	hash, err := ResolveAdminHash("", "plain-secret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "plain-secret"))

	kept, err := ResolveAdminHash(hash, "ignored", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, hash, kept)

	_, err = ResolveAdminHash("not-a-bcrypt-hash", "", bcrypt.MinCost)
	require.Error(t, err)

	_, err = ResolveAdminHash("", "", bcrypt.MinCost)
	require.Error(t, err)
}
