package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/soylemapp/soylem-client/internal/client/models"
)

// Manifest fetches the catalog manifest: one global version counter plus
// the time of the last catalog mutation.
func (c *Client) Manifest(ctx context.Context) (*models.Manifest, error) {
	var m models.Manifest
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+pathGlobalCards+"/manifest", nil, "", &m); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &m, nil
}

// Changes fetches the change records since the given timestamp. An empty
// since means "everything": the server returns the full change history.
func (c *Client) Changes(ctx context.Context, since string) ([]models.Change, error) {
	u := c.baseURL + pathGlobalCards + "/changes"
	if since != "" {
		u += "?since=" + url.QueryEscape(since)
	}
	var changes []models.Change
	if err := c.doJSON(ctx, http.MethodGet, u, nil, "", &changes); err != nil {
		return nil, fmt.Errorf("failed to load changes: %w", err)
	}
	return changes, nil
}

// CardByID fetches the full global card record for one change id.
func (c *Client) CardByID(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+pathGlobalCards+"/"+url.PathEscape(id), nil, "", &card); err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", id, err)
	}
	return &card, nil
}

// GlobalCards fetches the full global card list. Unlike the incremental
// endpoints this one is cacheable, so it keeps working offline.
func (c *Client) GlobalCards(ctx context.Context) ([]models.Card, error) {
	var out struct {
		Cards []models.Card `json:"cards"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+pathGlobalCards, nil, "", &out); err != nil {
		return nil, fmt.Errorf("failed to load global cards: %w", err)
	}
	return out.Cards, nil
}
