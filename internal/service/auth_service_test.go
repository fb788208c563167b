package service

import (
	"context"
	"testing"

	"klikpos/internal/config"
	"klikpos/internal/dto"
	"klikpos/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (AuthService, *memUserRepo, uuid.UUID) {
	t.Helper()
	users := newMemUserRepo()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
	svc := NewAuthService(users, cfg)

	profileID := uuid.New()
	pid := profileID.String()
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username:     "jane",
		FullName:     "Jane Wanjiku",
		Password:     "s3cret-pass",
		Role:         model.RoleCashier,
		POSProfileID: &pid,
	})
	require.NoError(t, err)
	return svc, users, profileID
}

func TestLogin_IssuesTokenWithRoleAndProfile(t *testing.T) {
	svc, _, profileID := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jane", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	require.NotNil(t, resp.User.POSProfileID)
	assert.Equal(t, profileID.String(), *resp.User.POSProfileID)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, claims["role"])
	assert.Equal(t, profileID.String(), claims["pos_profile_id"])
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jane", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jane", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, u := range users.users {
		u.Active = false
	}
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "inactive users cannot refresh")
}

func TestProfileService(t *testing.T) {
	p := testProfile()
	svc := NewProfileService(newMemProfileRepo(p))

	resp, err := svc.Current(context.Background(), cashier(p.ID))
	require.NoError(t, err)
	assert.Equal(t, "Main Till", resp.Name)
	assert.Equal(t, "Cash", resp.CashMode)

	modes, err := svc.PaymentModes(context.Background(), cashier(p.ID))
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.True(t, modes[0].IsDefault)
	assert.Equal(t, "Card", modes[1].ModeOfPayment)

	_, err = svc.Current(context.Background(), cashier(uuid.New()))
	assert.Error(t, err)
}
