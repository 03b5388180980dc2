package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jusunglee/romanize/internal/db/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOrigins(t *testing.T) {
	assert.Nil(t, splitOrigins(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example, ,https://b.example "))
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	healthHandler(repo)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, repo.Close())
	rec = httptest.NewRecorder()
	healthHandler(repo)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestStaticHandler(t *testing.T) {
	h, err := newStaticHandler()
	require.NoError(t, err)

	for _, path := range []string{"/", "/app.js", "/some/client/route"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "<title>Romanize</title>")
}
