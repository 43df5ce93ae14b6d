package middleware

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSession(t *testing.T) {
	sessionMiddleware := NewSessionMiddleware(NewCookieStore("test-secret", false))

	var seen []string
	handler := sessionMiddleware.EnsureSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, GetSessionID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	server := httptest.NewServer(handler)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// First request mints an id, the second one reuses it.
	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])

	// A cookie-less client gets its own session.
	resp, err = http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Len(t, seen, 3)
	assert.NotEqual(t, seen[0], seen[2])
}

func TestGetSessionIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetSessionID(req.Context()))
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight is answered without hitting the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/booking", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("normal requests pass through with headers set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/booking", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestErrorHandlingMiddleware(t *testing.T) {
	handler := ErrorHandlingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
