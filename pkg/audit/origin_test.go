package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginMiddleware(t *testing.T) {
	var captured Origin
	handler := OriginMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = OriginFromContext(r.Context())
	}))

	t.Run("uses remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.0.2.10:54321"
		req.Header.Set("User-Agent", "materialctl/1.0")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "192.0.2.10", captured.IPAddress)
		assert.Equal(t, "materialctl/1.0", captured.UserAgent)
	})

	t.Run("x-forwarded-for takes precedence", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "203.0.113.5", captured.IPAddress)
	})
}

func TestOriginFromContext_Missing(t *testing.T) {
	origin := OriginFromContext(context.Background())
	assert.Empty(t, origin.IPAddress)
	assert.Empty(t, origin.UserAgent)
}
