package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHistogramCountsFirstMatchingBucket(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	assert.Equal(t, []uint64{1, 1}, snap.counts)
	assert.Equal(t, uint64(3), snap.count)
	assert.Equal(t, float64(555), snap.sum)
}

func TestRenderIncludesExtractionSeries(t *testing.T) {
	IncExtractionStarted()
	IncExtractionFailed("MODEL_UNAVAILABLE")
	ObserveModelCallMs(120)

	out := Render()
	assert.Contains(t, out, "skills_extraction_started_total ")
	assert.Contains(t, out, `skills_extraction_failed_total{code="MODEL_UNAVAILABLE"}`)
	assert.Contains(t, out, `model_call_duration_ms_bucket{le="250"}`)
	assert.Contains(t, out, "model_calls_in_flight ")
}

func TestHandlerServesTextFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, resp.Body.String(), "# TYPE skills_extraction_completed_total counter")
}
