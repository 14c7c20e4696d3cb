package service

import (
	"context"
	"testing"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/internal/testutil"
	"reviewflow/pkg/auth"

	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	db := testutil.NewTestDB(t, &model.User{})
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}
	return NewAuthService(db, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "s3cret!",
		Role:     model.RoleSeller,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEqual(t, "s3cret!", user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "asha@example.com", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ParseToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, model.RoleSeller, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "s3cret!",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "asha@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	in := &RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "pw", Role: model.RoleUser}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "pw",
		Role:     model.RoleAdmin,
	})
	require.Error(t, err)
}
