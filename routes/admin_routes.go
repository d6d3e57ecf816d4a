package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/controllers/admin_controller"
	middleware "github.com/joy095/parlour/middlewares"
	"github.com/joy095/parlour/middlewares/auth"
)

func RegisterAdminRoutes(router *gin.Engine, d Dependencies) {
	adminController := admin_controller.NewAdminController(d.Auth, d.Bookings)

	admin := router.Group("/admin")
	admin.POST("/login",
		middleware.CombinedRateLimiter("admin_login", d.Redis, d.Config.LoginRateLimits...),
		adminController.Login)

	protected := admin.Group("/")
	protected.Use(auth.AuthMiddleware(d.Auth))
	{
		protected.POST("/change-password", adminController.ChangePassword)
		protected.POST("/mark-paid", adminController.MarkPaid)
		protected.GET("/pending-bookings", adminController.PendingBookings)
		protected.GET("/bookings", adminController.AllBookings)
		protected.GET("/bookings/:booking_id", adminController.GetBooking)
	}
}
