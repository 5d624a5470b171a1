package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/kinocat/internal/metrics"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestLogRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/films/{uuid}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	counter := metrics.APIRequests.WithLabelValues(http.MethodGet, "GET /api/v1/films/{uuid}", "404")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	logRequests(mux, logger).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/films/abc", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "path=/api/v1/films/abc")
	assert.Equal(t, before+1, testutil.ToFloat64(counter), "counted under the route pattern")
}

func TestOpenDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kinocat.db")

	db, err := openDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM films").Scan(&n))
	assert.Zero(t, n)
}
