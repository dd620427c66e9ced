package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soylemapp/soylem-client/internal/client/api"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/logging"
)

// AuthAPI is the slice of the API client the auth service needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Logout(ctx context.Context) error
	RefreshAccessToken(ctx context.Context) (string, error)
}

// AuthService owns session upkeep: login/logout and the proactive refresh
// of an expired access token at startup. The in-band refresh on 401 lives
// in the request layer.
type AuthService struct {
	api  AuthAPI
	meta metadata.Repository
	log  logging.Logger
	now  func() time.Time
}

func NewAuthService(api AuthAPI, meta metadata.Repository, log logging.Logger) *AuthService {
	return &AuthService{api: api, meta: meta, log: log, now: time.Now}
}

// Login authenticates and returns the user's role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	return res.Role, nil
}

// Logout discards the stored session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.api.Logout(ctx)
}

// LoggedIn reports whether an access token is stored.
func (s *AuthService) LoggedIn(ctx context.Context) (bool, error) {
	tok, err := s.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	return len(tok) > 0, nil
}

// EnsureFresh refreshes the stored access token when its exp claim has
// passed. Without a stored token this is a no-op. When the refresh is
// rejected the request layer has already cleared the session.
func (s *AuthService) EnsureFresh(ctx context.Context) error {
	raw, err := s.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	exp, ok := tokenExpiry(string(raw))
	if !ok {
		// unreadable token: treat like an expired one
		s.log.Warn(ctx, "stored access token is unreadable, refreshing")
	} else if exp.After(s.now()) {
		return nil
	}

	if _, err := s.api.RefreshAccessToken(ctx); err != nil {
		s.log.Warn(ctx, "proactive token refresh failed", "error", err)
		return err
	}
	return nil
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// client only schedules refreshes with it, the server stays authoritative.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
