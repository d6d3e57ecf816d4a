package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/logger"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Example: router.POST("/bookings", middleware.NewRateLimiter("20-1m", "bookings", rdb), handler)

// createStore returns a Redis-backed store shared by every instance when rdb is
// set, and a process-local memory store otherwise.
func createStore(routeID string, period time.Duration, rdb *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	}

	if rdb == nil {
		return memorystore.NewStoreWithOptions(opts), nil
	}

	store, err := redisstore.NewStoreWithOptions(rdb, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}
	return store, nil
}

// ParseCustomRate allows formats like "10-2m", "30-20m", "5-1h", "20-10s", etc.
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(strings.TrimSpace(rateStr), "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	var unit time.Duration

	switch {
	case strings.HasSuffix(durationStr, "s"):
		unit = time.Second
	case strings.HasSuffix(durationStr, "m"):
		unit = time.Minute
	case strings.HasSuffix(durationStr, "h"):
		unit = time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	return limiter.Rate{
		Period: time.Duration(n) * unit,
		Limit:  int64(limit),
	}, nil
}

func newLimiter(rateStr, routeID string, rdb *redis.Client) (*limiter.Limiter, error) {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		return nil, err
	}
	store, err := createStore(routeID, rate.Period, rdb)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

func limitReached(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
}

// NewRateLimiter limits requests per client IP on one route, e.g. "10-2m".
// A bad rate string or store error disables limiting for the route and is logged.
func NewRateLimiter(rateStr, routeID string, rdb *redis.Client) gin.HandlerFunc {
	l, err := newLimiter(rateStr, routeID, rdb)
	if err != nil {
		logger.ErrorLogger.Errorf("Rate limiting disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	return ginmiddleware.NewMiddleware(l,
		ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
			return c.ClientIP()
		}),
		ginmiddleware.WithLimitReachedHandler(limitReached),
		ginmiddleware.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorLogger.Errorf("Rate limiter error on route %s: %v", routeID, err)
			c.Next()
		}),
	)
}

// CombinedRateLimiter enforces several windows on the same route, e.g. a short
// burst limit plus an hourly cap. Every window is counted on each request.
func CombinedRateLimiter(routeID string, rdb *redis.Client, rateStrings ...string) gin.HandlerFunc {
	limiters := make([]*limiter.Limiter, 0, len(rateStrings))
	for i, rateStr := range rateStrings {
		l, err := newLimiter(rateStr, fmt.Sprintf("%s_%d", routeID, i), rdb)
		if err != nil {
			logger.ErrorLogger.Errorf("Skipping rate %q for route %s: %v", rateStr, routeID, err)
			continue
		}
		limiters = append(limiters, l)
	}

	return func(c *gin.Context) {
		key := c.ClientIP()
		reached := false
		for _, l := range limiters {
			lctx, err := l.Get(c.Request.Context(), key)
			if err != nil {
				logger.ErrorLogger.Errorf("Rate limiter error on route %s: %v", routeID, err)
				continue
			}
			if lctx.Reached {
				reached = true
				c.Header("Retry-After", strconv.FormatInt(lctx.Reset-time.Now().Unix(), 10))
			}
		}
		if reached {
			limitReached(c)
			return
		}
		c.Next()
	}
}
