package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/controllers/booking_controller"
	middleware "github.com/joy095/parlour/middlewares"
)

func RegisterBookingRoutes(router *gin.Engine, d Dependencies) {
	bookingController := booking_controller.NewBookingController(d.Bookings)

	router.POST("/bookings",
		middleware.NewRateLimiter(d.Config.BookingRateLimit, "bookings", d.Redis),
		bookingController.CreateBooking)
}
