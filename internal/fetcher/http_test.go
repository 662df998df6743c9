package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "baacviz/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestHTTPFetcher_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 5})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 2})
	_, err := f.Download(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_NotFoundIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3})
	_, err := f.Download(context.Background(), srv.URL)
	assert.Error(t, err)
	// 404 is not retryable.
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_DownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("file contents"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.csv")
	f := NewHTTPFetcher(HTTPOptions{})
	n, err := f.DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("file contents")), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
}
