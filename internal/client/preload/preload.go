// Package preload prefetches card media into the local asset directory so
// freshly synced cards render without a network round trip.
package preload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/logging"
)

// Preloader downloads card images, thumbnails and audio after a sync.
// Preloading is strictly best effort: every failure is logged and swallowed,
// a card with no cached media simply loads it lazily later.
type Preloader struct {
	base   string
	client *http.Client
	dir    string
	log    logging.Logger
}

func New(base string, client *http.Client, dir string, log logging.Logger) *Preloader {
	return &Preloader{base: base, client: client, dir: dir, log: log}
}

// Preload fetches the media of every card in the batch. Files already on
// disk are skipped, so re-preloading after a retried sync is cheap.
func (p *Preloader) Preload(ctx context.Context, cards []models.Card) {
	var fetched, failed int
	for _, c := range cards {
		for _, uri := range []string{c.ImageURI, c.ThumbnailURI, c.AudioKK} {
			if uri == "" {
				continue
			}
			ok, err := p.fetch(ctx, uri)
			if err != nil {
				failed++
				p.log.Warn(ctx, "preload failed", "card", c.ID, "uri", uri, "error", err)
				continue
			}
			if ok {
				fetched++
			}
		}
	}
	if fetched > 0 || failed > 0 {
		p.log.Info(ctx, "preload finished", "fetched", fetched, "failed", failed)
	}
}

// fetch downloads one asset, reporting (false, nil) when it is already
// cached. Transient failures are retried with capped exponential backoff.
func (p *Preloader) fetch(ctx context.Context, uri string) (bool, error) {
	dest := filepath.Join(p.dir, path.Base(uri))
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	}

	url := uri
	if !models.IsRemote(url) {
		url = p.base + url
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(p.download(ctx, url, dest))
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Preloader) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// write to a temp file first so a torn download never masquerades as a
	// cached asset
	tmp, err := os.CreateTemp(p.dir, ".preload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
