package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, NewRoleSet(RoleRenter, RoleOwner))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)

	roles := ParseRoleSet(claims.Roles)
	assert.True(t, roles.Has(RoleRenter))
	assert.True(t, roles.Has(RoleOwner))
	assert.False(t, roles.Has(RoleAdmin))
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	other := NewJWTManager("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), NewRoleSet(RoleRenter))
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), NewRoleSet(RoleRenter))
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	_, err := manager.VerifyToken("not-a-token")
	assert.Error(t, err)
}
