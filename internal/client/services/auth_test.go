package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soylemapp/soylem-client/internal/client/api"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
)

type fakeAuthAPI struct {
	loginResult *api.LoginResult
	loginErr    error
	refreshErr  error

	refreshCalls int
	logoutCalls  int
}

func (f *fakeAuthAPI) Login(context.Context, string, string) (*api.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.logoutCalls++
	return nil
}

func (f *fakeAuthAPI) RefreshAccessToken(context.Context) (string, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "fresh-token", nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func authFixture(t *testing.T, storedToken string) (*AuthService, *fakeAuthAPI, metadata.Repository) {
	t.Helper()
	db := setupDB(t)
	meta := metadata.NewSQLiteRepository(db)
	if storedToken != "" {
		require.NoError(t, meta.Set(context.Background(), metadata.KeyAccessToken, []byte(storedToken)))
	}
	fa := &fakeAuthAPI{}
	return NewAuthService(fa, meta, testLogger()), fa, meta
}

func TestEnsureFresh_NoStoredTokenIsNoop(t *testing.T) {
	svc, fa, _ := authFixture(t, "")

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, 0, fa.refreshCalls)
}

func TestEnsureFresh_ValidTokenSkipsRefresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, fa, _ := authFixture(t, signedToken(t, now.Add(time.Hour)))
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, 0, fa.refreshCalls)
}

func TestEnsureFresh_ExpiredTokenRefreshes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, fa, _ := authFixture(t, signedToken(t, now.Add(-time.Minute)))
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, 1, fa.refreshCalls)
}

func TestEnsureFresh_UnreadableTokenRefreshes(t *testing.T) {
	svc, fa, _ := authFixture(t, "not.a.jwt")

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, 1, fa.refreshCalls)
}

func TestEnsureFresh_RefreshFailurePropagates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, fa, _ := authFixture(t, signedToken(t, now.Add(-time.Minute)))
	svc.now = func() time.Time { return now }
	fa.refreshErr = errors.New("refresh rejected")

	err := svc.EnsureFresh(context.Background())
	require.Error(t, err)
}

func TestLogin_ReturnsRole(t *testing.T) {
	svc, fa, _ := authFixture(t, "")
	fa.loginResult = &api.LoginResult{AccessToken: "a", RefreshToken: "r", Role: "admin"}

	role, err := svc.Login(context.Background(), "u@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestLoggedIn(t *testing.T) {
	svc, _, meta := authFixture(t, "")
	ctx := context.Background()

	ok, err := svc.LoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte("tok")))
	ok, err = svc.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogout_CallsThrough(t *testing.T) {
	svc, fa, _ := authFixture(t, "")

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 1, fa.logoutCalls)
}

func TestTokenExpiry_MissingExpClaim(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, ok := tokenExpiry(tok)
	assert.False(t, ok)
}
