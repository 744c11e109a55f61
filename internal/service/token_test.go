package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialblast/backend/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	pair, refreshExp, err := tm.GeneratePair(user)
	require.NoError(t, err)
	assert.True(t, refreshExp.After(time.Now()))

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleAdmin, role)

	claims, err := tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_ParseAccess_WrongSecret(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("another-secret", "another-refresh", 15*time.Minute, time.Hour)

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)

	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_ParseRefresh_NotAccessToken(t *testing.T) {
	tm := newTestTokenManager()

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)

	// Access токен подписан другим секретом
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}
