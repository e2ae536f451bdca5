package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roamio/tripplanner/internal/models"
)

const testSecret = "test_secret_key_minimum_32_characters_long"

func TestSignAndParseAccess(t *testing.T) {
	svc := NewService(testSecret)

	tokenStr, err := svc.SignAccess(42, models.RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := svc.ParseAccess(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseAccessRejectsRefreshToken(t *testing.T) {
	svc := NewService(testSecret)

	refresh, err := svc.SignRefresh(7)
	assert.NoError(t, err)

	_, err = svc.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRefresh(t *testing.T) {
	svc := NewService(testSecret)

	refresh, err := svc.SignRefresh(7)
	assert.NoError(t, err)

	claims, err := svc.ParseRefresh(refresh)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	access, _ := svc.SignAccess(7, models.RoleUser)
	_, err = svc.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	svc := NewService(testSecret)

	expired, err := svc.sign(42, string(models.RoleUser), kindAccess, -time.Minute)
	assert.NoError(t, err)

	_, err = svc.ParseAccess(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tokenStr, err := NewService(testSecret).SignAccess(1, models.RoleUser)
	assert.NoError(t, err)

	other := NewService("another_secret_key_also_32_chars_long_xx")
	_, err = other.ParseAccess(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	svc := NewService(testSecret)

	_, err := svc.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSecret(t *testing.T) {
	assert.Error(t, ValidateSecret(""))
	assert.Error(t, ValidateSecret("short"))
	assert.NoError(t, ValidateSecret(testSecret))
}
