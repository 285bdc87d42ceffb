package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"
	// APIKeyHeader carries the client API key
	APIKeyHeader = "X-API-Key"

	requestIDKey = "request_id"
)

// Config defines middleware configuration
type Config struct {
	EnableLogging bool
	SkipPaths     []string

	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int

	EnableSecurity bool
	FrameOptions   string
}

// DefaultConfig returns default middleware configuration
func DefaultConfig() *Config {
	return &Config{
		EnableLogging:  true,
		SkipPaths:      []string{"/health/live", "/metrics"},
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", APIKeyHeader, RequestIDHeader},
		MaxAge:         86400,
		EnableSecurity: true,
		FrameOptions:   "DENY",
	}
}

// MiddlewareChain holds all middleware instances
type MiddlewareChain struct {
	config *Config
	logger logrus.FieldLogger
}

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(config *Config, logger logrus.FieldLogger) *MiddlewareChain {
	if config == nil {
		config = DefaultConfig()
	}
	return &MiddlewareChain{
		config: config,
		logger: logger.WithField("component", "http"),
	}
}

// Apply applies all configured middleware to the Gin engine
func (m *MiddlewareChain) Apply(r *gin.Engine) {
	// Recovery sits outermost so panics in later middleware are logged too.
	r.Use(m.Recovery())
	r.Use(RequestID())

	if m.config.EnableSecurity {
		r.Use(m.Security())
	}
	if m.config.EnableCORS {
		r.Use(m.CORS())
	}
	if m.config.EnableLogging {
		r.Use(m.Logging())
	}
}

// RequestID assigns every request an id, reusing the caller's X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return c.GetHeader(RequestIDHeader)
}

// GetClientIP extracts real client IP from request
func GetClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if commaIdx := strings.Index(xff, ","); commaIdx != -1 {
			return strings.TrimSpace(xff[:commaIdx])
		}
		return xff
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	return c.ClientIP()
}

// Logging logs one line per request
func (m *MiddlewareChain) Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if m.shouldSkipPath(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := m.logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"query":       c.Request.URL.RawQuery,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   GetClientIP(c),
			"request_id":  GetRequestID(c),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}

// Recovery turns panics into 500 responses and logs them
func (m *MiddlewareChain) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.WithFields(logrus.Fields{
					"path":       c.Request.URL.Path,
					"request_id": GetRequestID(c),
					"panic":      fmt.Sprint(r),
				}).Error("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORS answers preflight requests and sets the allow headers
func (m *MiddlewareChain) CORS() gin.HandlerFunc {
	methods := strings.Join(m.config.AllowedMethods, ", ")
	headers := strings.Join(m.config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(m.config.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && m.isAllowedOrigin(origin) {
			if m.allowsAnyOrigin() {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Expose-Headers", RequestIDHeader)
			c.Header("Access-Control-Max-Age", maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Security sets the standard hardening headers
func (m *MiddlewareChain) Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", m.config.FrameOptions)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// APIKey rejects requests without the configured X-API-Key.
// An empty key disables the check.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (m *MiddlewareChain) shouldSkipPath(path string) bool {
	for _, skip := range m.config.SkipPaths {
		if path == skip {
			return true
		}
	}
	return false
}

func (m *MiddlewareChain) allowsAnyOrigin() bool {
	for _, o := range m.config.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (m *MiddlewareChain) isAllowedOrigin(origin string) bool {
	if m.allowsAnyOrigin() {
		return true
	}
	for _, o := range m.config.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
