package archive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"https://acct.r2.cloudflarestorage.com":          "acct.r2.cloudflarestorage.com",
		"http://localhost:9000/":                         "localhost:9000",
		" https://acct.r2.cloudflarestorage.com/bucket ": "acct.r2.cloudflarestorage.com",
		"minio:9000":                                     "minio:9000",
	}
	for in, want := range tests {
		require.Equal(t, want, sanitizeEndpoint(in), in)
	}
}

func TestNewR2ArchiveRequiresBucket(t *testing.T) {
	_, err := NewR2Archive("https://example.com", "a", "b", " ", "auto", nil)
	require.Error(t, err)
}

func TestR2ArchiveStore(t *testing.T) {
	var (
		mu      sync.Mutex
		heads   int
		putPath string
		putType string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodHead:
			heads++
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			_, _ = io.Copy(io.Discard, r.Body)
			putPath = r.URL.Path
			putType = r.Header.Get("Content-Type")
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	archive, err := NewR2Archive(server.URL, "key", "secret", "uploads", "us-east-1", logger)
	require.NoError(t, err)

	require.NoError(t, archive.Store(context.Background(), "uploads/run-1/notes.txt", []byte("hello"), "text/plain; charset=utf-8"))
	require.NoError(t, archive.Store(context.Background(), "uploads/run-2/notes.txt", []byte("again"), "text/plain; charset=utf-8"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, heads)
	require.Equal(t, "/uploads/uploads/run-2/notes.txt", putPath)
	require.Equal(t, "text/plain; charset=utf-8", putType)
}
