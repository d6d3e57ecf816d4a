package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/config"
	"github.com/joy095/parlour/middlewares/cors"
	ginlogger "github.com/joy095/parlour/middlewares/logger"
	"github.com/joy095/parlour/services/auth_service"
	"github.com/joy095/parlour/services/booking_service"
	"github.com/joy095/parlour/utils"
	"github.com/redis/go-redis/v9"
)

// Pinger reports whether the storage engine is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Config   *config.Config
	Bookings *booking_service.BookingService
	Auth     *auth_service.AuthService
	Store    Pinger
	Redis    *redis.Client
}

func SetupRouter(d Dependencies) *gin.Engine {
	utils.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.GinLogger())
	r.Use(cors.CorsMiddleware(d.Config.CORSAllowedOrigins))

	RegisterBookingRoutes(r, d)
	RegisterAdminRoutes(r, d)

	health := healthHandler(d.Store)
	r.GET("/health", health)
	r.HEAD("/health", health)

	return r
}

func healthHandler(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok from parlour service"})
	}
}
