package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/common"
	"github.com/soylemapp/soylem-client/internal/logging"

	_ "modernc.org/sqlite"
)

type staticChecker bool

func (s staticChecker) Online(context.Context) bool { return bool(s) }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func setupMeta(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

func get(t *testing.T, c *Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func TestDo_AttachesStoredToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	meta := setupMeta(t)
	require.NoError(t, meta.Set(context.Background(), metadata.KeyAccessToken, []byte("stored-token")))

	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())
	resp := get(t, c, srv.URL+"/api/global/cards/manifest")
	defer resp.Body.Close()

	assert.Equal(t, "Bearer stored-token", gotAuth)
}

func TestDo_ExplicitTokenWins(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	meta := setupMeta(t)
	require.NoError(t, meta.Set(context.Background(), metadata.KeyAccessToken, []byte("stored-token")))

	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/cards", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer explicit-token")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer explicit-token", gotAuth)
}

func TestDo_OfflineReturnsCachedBody(t *testing.T) {
	meta := setupMeta(t)
	cached := `{"cards":[{"_id":"p1","title":"cat"}]}`
	require.NoError(t, meta.Set(context.Background(), metadata.KeyCardsCache, []byte(cached)))

	c := NewClient("http://unreachable.invalid", meta, staticChecker(false), testLogger())
	resp := get(t, c, "http://unreachable.invalid/api/cards?section=animals&page=1")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, cached, string(body))
}

func TestDo_OfflineWithoutCacheFails(t *testing.T) {
	c := NewClient("http://unreachable.invalid", setupMeta(t), staticChecker(false), testLogger())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://unreachable.invalid/api/cards", nil)
	require.NoError(t, err)
	_, err = c.Do(req)
	require.ErrorIs(t, err, common.ErrNoConnection)
}

func TestDo_OfflineNonCacheableEndpointFails(t *testing.T) {
	meta := setupMeta(t)
	require.NoError(t, meta.Set(context.Background(), metadata.KeyGlobalCardsCache, []byte(`{}`)))

	c := NewClient("http://unreachable.invalid", meta, staticChecker(false), testLogger())
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
		"http://unreachable.invalid/api/global/cards/manifest", nil)
	require.NoError(t, err)

	// /manifest is not a cacheable family even though its prefix matches
	_, err = c.Do(req)
	require.ErrorIs(t, err, common.ErrNoConnection)
}

func TestDo_CachesSuccessfulListResponse(t *testing.T) {
	payload := `{"cards":[{"_id":"g1"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	meta := setupMeta(t)
	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())

	resp := get(t, c, srv.URL+"/api/global/cards")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.JSONEq(t, payload, string(body)) // body still readable after caching

	cached, err := meta.Get(context.Background(), metadata.KeyGlobalCardsCache)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(cached))
}

func TestDo_SingleRefreshRetryOn401(t *testing.T) {
	var refreshCalls, cardCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["refreshToken"] != "good-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "fresh-token"})
	})
	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		cardCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"cards":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	meta := setupMeta(t)
	ctx := context.Background()
	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte("stale-token")))
	require.NoError(t, meta.Set(ctx, metadata.KeyRefreshToken, []byte("good-refresh")))

	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())
	resp := get(t, c, srv.URL+"/api/cards")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), cardCalls.Load())

	tok, err := meta.Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", string(tok))
}

func TestDo_401AfterFailedRefreshIsReturned(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	meta := setupMeta(t)
	ctx := context.Background()
	require.NoError(t, meta.Set(ctx, metadata.KeyAccessToken, []byte("stale")))
	require.NoError(t, meta.Set(ctx, metadata.KeyRefreshToken, []byte("bad-refresh")))

	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())
	resp := get(t, c, srv.URL+"/api/cards")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), refreshCalls.Load())

	// session no longer trusted: both tokens cleared
	tok, err := meta.Get(ctx, metadata.KeyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, tok)
	rt, err := meta.Get(ctx, metadata.KeyRefreshToken)
	require.NoError(t, err)
	assert.Nil(t, rt)
}

func TestDo_UploadsBypassResilience(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	meta := setupMeta(t)
	require.NoError(t, meta.Set(context.Background(), metadata.KeyAccessToken, []byte("tok")))

	// checker says offline, but static assets are fetched directly anyway
	c := NewClient(srv.URL, meta, staticChecker(false), testLogger())
	resp := get(t, c, srv.URL+"/uploads/img/cat.jpg")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, gotAuth)
}

func TestLogin_StoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "at",
			"refreshToken": "rt",
			"role":         "admin",
		})
	}))
	defer srv.Close()

	meta := setupMeta(t)
	c := NewClient(srv.URL, meta, staticChecker(true), testLogger())

	res, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Role)

	ctx := context.Background()
	tok, _ := meta.Get(ctx, metadata.KeyAccessToken)
	assert.Equal(t, "at", string(tok))
	rt, _ := meta.Get(ctx, metadata.KeyRefreshToken)
	assert.Equal(t, "rt", string(rt))
}

func TestLogin_RejectedReturnsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, setupMeta(t), staticChecker(true), testLogger())
	_, err := c.Login(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestGlobalCards_ServedFromCacheWhileOffline(t *testing.T) {
	meta := setupMeta(t)
	require.NoError(t, meta.Set(context.Background(), metadata.KeyGlobalCardsCache,
		[]byte(`{"cards":[{"_id":"c1","title":"cat"},{"_id":"c2","title":"dog"}]}`)))

	c := NewClient("http://srv", meta, staticChecker(false), testLogger())

	cards, err := c.GlobalCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "cat", cards[0].Title)
}

func TestChanges_EscapesSinceTimestamp(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, setupMeta(t), staticChecker(true), testLogger())
	_, err := c.Changes(context.Background(), "2026-01-01T00:00:00+06:00")
	require.NoError(t, err)
	assert.Equal(t, "since=2026-01-01T00%3A00%3A00%2B06%3A00", gotQuery)
}
