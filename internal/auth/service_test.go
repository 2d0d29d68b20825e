package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*auth.Service, *gorm.DB, *models.User) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	service := auth.NewService(db, jwtService)

	hash, err := auth.HashPasswordCost("correct-password", 4)
	require.NoError(t, err)

	user := &models.User{
		Name:         "Login User",
		Email:        "login@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	return service, db, user
}

func TestService_Login(t *testing.T) {
	t.Run("succeeds with correct credentials", func(t *testing.T) {
		service, _, user := setupAuthService(t)

		resp, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "login@example.com",
			Password: "correct-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("normalizes email case and whitespace", func(t *testing.T) {
		service, _, _ := setupAuthService(t)

		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "  LOGIN@Example.COM ",
			Password: "correct-password",
		})
		require.NoError(t, err)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		service, _, _ := setupAuthService(t)

		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "login@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		service, _, _ := setupAuthService(t)

		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "nobody@example.com",
			Password: "correct-password",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects inactive user", func(t *testing.T) {
		service, db, user := setupAuthService(t)

		require.NoError(t, db.Model(user).Update("is_active", false).Error)

		_, err := service.Login(context.Background(), auth.LoginInput{
			Email:    "login@example.com",
			Password: "correct-password",
		})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})
}

func TestService_GetActiveUserByID(t *testing.T) {
	t.Run("returns active user", func(t *testing.T) {
		service, _, user := setupAuthService(t)

		got, err := service.GetActiveUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("rejects deactivated user", func(t *testing.T) {
		service, db, user := setupAuthService(t)

		require.NoError(t, db.Model(user).Update("is_active", false).Error)

		_, err := service.GetActiveUserByID(context.Background(), user.ID)
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})

	t.Run("unknown id", func(t *testing.T) {
		service, _, _ := setupAuthService(t)

		_, err := service.GetActiveUserByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
