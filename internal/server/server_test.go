package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgserver "newscurator/pkg/server"
)

type downChecker struct{}

func (downChecker) Healthy(_ context.Context) bool { return false }

func TestHealthz(t *testing.T) {
	s := New(Config{Port: "8080", CorsOrigins: []string{"*"}}, pkgserver.NewOkHealthChecker())

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthz_Unhealthy(t *testing.T) {
	s := New(Config{Port: "8080", CorsOrigins: []string{"*"}}, downChecker{})

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())
}
