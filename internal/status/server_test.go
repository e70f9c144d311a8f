package status

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReporter struct {
	completed, skipped, seeded, pending int
}

func (f *fakeReporter) Progress() (int, int, int, int) {
	return f.completed, f.skipped, f.seeded, f.pending
}

func testServer(reporter ProgressReporter) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(0, "vqagen-dispatcher", reporter, logger)
}

func TestServer_Health(t *testing.T) {
	s := testServer(&fakeReporter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "vqagen-dispatcher", body["service"])
}

func TestServer_Progress(t *testing.T) {
	s := testServer(&fakeReporter{completed: 7, skipped: 2, seeded: 10, pending: 3})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	s.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["completed"])
	assert.Equal(t, float64(2), body["skipped"])
	assert.Equal(t, float64(10), body["seeded"])
	assert.Equal(t, float64(3), body["pending"])
}

func TestServer_UnknownRoute(t *testing.T) {
	s := testServer(&fakeReporter{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	s.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
