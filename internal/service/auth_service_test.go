package service

import (
	"testing"

	"surveyhub/config"
	"surveyhub/internal/auth"
	"surveyhub/internal/models"
	"surveyhub/internal/repository"
	"surveyhub/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	db := testutil.NewTestDB(t, &models.User{}, &models.UserProfile{})
	cfg := config.Load()
	return NewAuthService(cfg, repository.NewUserRepository(db), repository.NewProfileRepository(db), NewEmailService(cfg.SMTP))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	u, access, refresh, err := svc.Register("Dave@Example.com ", "hunter22", "Dave", "Lee")
	require.NoError(t, err)
	require.Equal(t, "dave@example.com", u.Email, "email is normalized")
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)

	// Duplicate registration is refused.
	_, _, _, err = svc.Register("dave@example.com", "other", "", "")
	require.ErrorIs(t, err, ErrEmailExists)

	got, _, _, err := svc.Login("DAVE@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)

	_, _, _, err = svc.Login("dave@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLoginInactiveUser(t *testing.T) {
	svc := newAuthService(t)

	u, _, _, err := svc.Register("eve@example.com", "pw123456", "", "")
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, svc.userRepo.Update(u))

	_, _, _, err = svc.Login("eve@example.com", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)

	u, _, _, err := svc.Register("frank@example.com", "oldpass1", "", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "newpass1"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "oldpass1", "newpass1"))

	_, _, _, err = svc.Login("frank@example.com", "oldpass1")
	require.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("frank@example.com", "newpass1")
	require.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	u, _, refresh, err := svc.Register("gina@example.com", "pw123456", "", "")
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newRefresh)

	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)

	_, _, err = svc.RefreshToken("not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
