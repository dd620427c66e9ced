package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/common"
)

type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

// Login authenticates with email and password, persisting both tokens on
// success. Login bypasses Do: there is no token to attach yet, and a login
// attempt while offline should fail plainly.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAuthLogin, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		LoginResult
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.AccessToken == "" || out.RefreshToken == "" {
		if out.Message != "" {
			return nil, fmt.Errorf("login failed: %s", out.Message)
		}
		return nil, common.ErrUnauthorized
	}

	if err := c.meta.Set(ctx, metadata.KeyAccessToken, []byte(out.AccessToken)); err != nil {
		return nil, err
	}
	if err := c.meta.Set(ctx, metadata.KeyRefreshToken, []byte(out.RefreshToken)); err != nil {
		return nil, err
	}
	return &out.LoginResult, nil
}

// Logout discards the stored session tokens.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.meta.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	return c.meta.Delete(ctx, metadata.KeyRefreshToken)
}
