package auth_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/pedido-service/internal/auth"
)

func TestManager_TokenRoundTrip(t *testing.T) {
	mgr := auth.NewManager("test-secret", 30*time.Minute)

	userID, err := uuid.NewV4()
	assert.NoError(t, err)

	token, expiresIn, err := mgr.GenerateToken(userID, "ADMIN")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(1800), expiresIn)

	claims, err := mgr.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Scope)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "pedido-service", claims.Issuer)
}

func TestManager_ValidateToken(t *testing.T) {
	mgr := auth.NewManager("test-secret", 30*time.Minute)

	userID, err := uuid.NewV4()
	assert.NoError(t, err)

	t.Run("wrong_secret", func(t *testing.T) {
		token, _, err := mgr.GenerateToken(userID, "CLIENTE")
		assert.NoError(t, err)

		other := auth.NewManager("another-secret", 30*time.Minute)
		_, err = other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := auth.NewManager("test-secret", -time.Minute)
		token, _, err := expired.GenerateToken(userID, "CLIENTE")
		assert.NoError(t, err)

		_, err = expired.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := mgr.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3nh4-forte")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3nh4-forte", hash)

	assert.True(t, auth.CheckPassword(hash, "s3nh4-forte"))
	assert.False(t, auth.CheckPassword(hash, "senha-errada"))
}
