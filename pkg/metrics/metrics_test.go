package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/projects/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/projects/:id", "404"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p-1", nil))

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/projects/:id", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecordSnapshotLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(SnapshotLoads.WithLabelValues("test", "success"))
	errBefore := testutil.ToFloat64(SnapshotLoads.WithLabelValues("test", "error"))

	RecordSnapshotLoad("test", nil)
	RecordSnapshotLoad("test", errors.New("down"))
	RecordSnapshotLoad("test", errors.New("down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(SnapshotLoads.WithLabelValues("test", "success")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(SnapshotLoads.WithLabelValues("test", "error")))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(SnapshotCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(SnapshotCache.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(SnapshotCache.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(SnapshotCache.WithLabelValues("miss")))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", Handler())

	RecordCacheLookup(true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "docdesk_snapshot_cache_total"))
}
