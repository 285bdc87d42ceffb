package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(config *Config) (*gin.Engine, *bytes.Buffer) {
	gin.SetMode(gin.TestMode)

	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	NewMiddlewareChain(config, logger).Apply(router)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return router, buf
}

func TestRequestID(t *testing.T) {
	router, _ := newTestRouter(nil)

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	router, buf := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?x=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"path":"/test"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), "request completed")
}

func TestRecovery(t *testing.T) {
	router, buf := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name         string
		origins      []string
		origin       string
		method       string
		expectedCode int
		expectedACAO string
	}{
		{
			name:         "wildcard",
			origins:      []string{"*"},
			origin:       "http://ui.local",
			method:       http.MethodGet,
			expectedCode: http.StatusOK,
			expectedACAO: "*",
		},
		{
			name:         "listed origin",
			origins:      []string{"http://ui.local"},
			origin:       "http://ui.local",
			method:       http.MethodGet,
			expectedCode: http.StatusOK,
			expectedACAO: "http://ui.local",
		},
		{
			name:         "unlisted origin",
			origins:      []string{"http://ui.local"},
			origin:       "http://evil.local",
			method:       http.MethodGet,
			expectedCode: http.StatusOK,
			expectedACAO: "",
		},
		{
			name:         "preflight",
			origins:      []string{"*"},
			origin:       "http://ui.local",
			method:       http.MethodOptions,
			expectedCode: http.StatusNoContent,
			expectedACAO: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.AllowedOrigins = tt.origins
			router, _ := newTestRouter(config)

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedACAO, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		key          string
		header       string
		expectedCode int
	}{
		{name: "disabled", key: "", header: "", expectedCode: http.StatusOK},
		{name: "valid key", key: "secret", header: "secret", expectedCode: http.StatusOK},
		{name: "missing key", key: "secret", header: "", expectedCode: http.StatusUnauthorized},
		{name: "wrong key", key: "secret", header: "nope", expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(APIKey(tt.key))
			router.GET("/api/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	assert.Equal(t, "10.0.0.1", GetClientIP(c))
}
