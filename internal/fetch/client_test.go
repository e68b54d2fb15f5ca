package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infobox/internal/config"
	"infobox/internal/pipeline"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testClient(rt roundTripFunc) *Client {
	cfg := config.Config{FetchTimeoutMs: 1000, FetchRateLimitRPS: 1000}
	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func TestDownloadWithRetry(t *testing.T) {
	attempt := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/data/arachnid", r.URL.Path)
		attempt++
		if attempt == 1 {
			return response(http.StatusServiceUnavailable, "busy"), nil
		}
		return response(http.StatusOK, "URI,name\nhttp://a,Alpha\n"), nil
	})

	dir := t.TempDir()
	path, err := client.Download(context.Background(), "https://example.test/data/arachnid", dir, pipeline.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, attempt)
	assert.Equal(t, filepath.Join(dir, "arachnid.csv"), path)

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "URI,name\nhttp://a,Alpha\n", string(blob))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadClientError(t *testing.T) {
	attempt := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempt++
		return response(http.StatusNotFound, "missing"), nil
	})
	_, err := client.Download(context.Background(), "https://example.test/missing.csv", t.TempDir(), pipeline.FormatCSV)
	require.Error(t, err)
	assert.Equal(t, 1, attempt)
}

func TestDownloadRejectsBadInput(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	_, err := client.Download(context.Background(), "ftp://example.test/a.csv", t.TempDir(), pipeline.FormatCSV)
	assert.Error(t, err)

	_, err = client.Download(context.Background(), "https://example.test/a", t.TempDir(), "json")
	assert.True(t, errors.Is(err, pipeline.ErrUnsupportedFormat))
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
