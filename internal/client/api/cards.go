package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/soylemapp/soylem-client/internal/client/models"
)

// CardUpload carries the mutable fields of a personal card. ImagePath and
// AudioPath are attached as multipart file parts only when they point at
// device-local files; remote URIs are already on the server.
type CardUpload struct {
	Title     string
	Section   string
	Line      int
	Page      int
	ImagePath string
	AudioPath string
}

// PersonalCards lists the caller's cards for one section/page.
func (c *Client) PersonalCards(ctx context.Context, section string, page int) ([]models.PersonalCard, error) {
	u := fmt.Sprintf("%s%s?section=%s&page=%d", c.baseURL, pathCards, url.QueryEscape(section), page)
	var out struct {
		Cards []models.PersonalCard `json:"cards"`
	}
	if err := c.doJSON(ctx, http.MethodGet, u, nil, "", &out); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return out.Cards, nil
}

// CreateCard creates a personal card via multipart form.
func (c *Client) CreateCard(ctx context.Context, upload CardUpload) (*models.PersonalCard, error) {
	fields := map[string]string{
		"title":   upload.Title,
		"section": upload.Section,
		"line":    strconv.Itoa(upload.Line),
		"page":    strconv.Itoa(upload.Page),
	}
	return c.uploadCard(ctx, http.MethodPost, c.baseURL+pathCards, fields, upload)
}

// UpdateCard updates a personal card's title and optionally replaces its
// image and recorded audio.
func (c *Client) UpdateCard(ctx context.Context, id string, upload CardUpload) (*models.PersonalCard, error) {
	fields := map[string]string{"title": upload.Title}
	return c.uploadCard(ctx, http.MethodPut, c.baseURL+pathCards+"/"+url.PathEscape(id), fields, upload)
}

// DeleteCard removes a personal card.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.baseURL+pathCards+"/"+url.PathEscape(id), nil, "", nil)
}

func (c *Client) uploadCard(ctx context.Context, method, u string, fields map[string]string, upload CardUpload) (*models.PersonalCard, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if upload.ImagePath != "" && !models.IsRemote(upload.ImagePath) {
		if err := attachFile(w, "image", upload.ImagePath); err != nil {
			return nil, err
		}
	}
	if upload.AudioPath != "" && !models.IsRemote(upload.AudioPath) {
		if err := attachFile(w, "audio_kk", upload.AudioPath); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var out struct {
		Card models.PersonalCard `json:"card"`
	}
	if err := c.doJSON(ctx, method, u, buf.Bytes(), w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out.Card, nil
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}
	return nil
}
