package booking_controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	"github.com/joy095/parlour/services/booking_service"
	"github.com/joy095/parlour/utils"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, in booking_service.CreateBookingInput) (*booking_models.Booking, error)
}

// BookingController serves the public booking endpoint.
type BookingController struct {
	bookings BookingCreator
}

func NewBookingController(bookings BookingCreator) *BookingController {
	return &BookingController{bookings: bookings}
}

type CreateBookingRequest struct {
	BookingID     string `json:"booking_id" binding:"required,max=36"`
	CustomerName  string `json:"customer_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Service       string `json:"service" binding:"required"`
	BookingDate   string `json:"booking_date" binding:"required"`
	PreferredTime string `json:"preferred_time" binding:"required"`
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}

	booking, err := bc.bookings.CreateBooking(c.Request.Context(), booking_service.CreateBookingInput{
		BookingID:     req.BookingID,
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Email:         req.Email,
		Service:       req.Service,
		BookingDate:   req.BookingDate,
		PreferredTime: req.PreferredTime,
	})
	if err != nil {
		var verr *utils.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		case errors.Is(err, utils.ErrSlotConflict):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Time slot already booked"})
		case errors.Is(err, utils.ErrDuplicateBooking):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking ID already exists"})
		default:
			logger.ErrorLogger.Errorf("Failed to create booking %s: %v", req.BookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Booking created. Show QR to customer.",
		"booking_id": booking.BookingID,
		"amount":     booking.Amount,
	})
}
