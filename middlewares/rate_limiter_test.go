package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Silence()
}

func TestParseCustomRate(t *testing.T) {
	tests := []struct {
		in     string
		limit  int64
		period time.Duration
		ok     bool
	}{
		{"10-2m", 10, 2 * time.Minute, true},
		{"5-1h", 5, time.Hour, true},
		{"20-10s", 20, 10 * time.Second, true},
		{"10", 0, 0, false},
		{"x-2m", 0, 0, false},
		{"10-2d", 0, 0, false},
		{"10-m", 0, 0, false},
		{"0-1m", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rate, err := ParseCustomRate(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, rate.Limit)
			assert.Equal(t, tt.period, rate.Period)
		})
	}
}

func serve(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestNewRateLimiterBlocksAfterLimit(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/limited", NewRateLimiter("2-1m", "test_single", nil), func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r))
	assert.Equal(t, http.StatusOK, serve(r))
	assert.Equal(t, http.StatusTooManyRequests, serve(r))
	assert.Equal(t, 2, calls)
}

func TestCombinedRateLimiterRunsHandlerOnce(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/limited", CombinedRateLimiter("test_combined", nil, "3-1m", "2-1h"), func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r))
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, serve(r))
	assert.Equal(t, http.StatusTooManyRequests, serve(r))
	assert.Equal(t, 2, calls)
}

func TestBadRateDisablesLimiting(t *testing.T) {
	r := gin.New()
	r.GET("/limited", NewRateLimiter("nonsense", "test_bad", nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r))
	}
}
