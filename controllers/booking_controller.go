package controllers

import (
	"net/http"

	"carrental-api/middleware"
	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
)

type BookingController struct {
	bookingService *services.BookingService
}

func NewBookingController(bookingService *services.BookingService) *BookingController {
	return &BookingController{bookingService: bookingService}
}

type CheckAvailabilityRequest struct {
	Location   string `json:"location"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

// CreateBookingRequest accepts the car id as either carId or car.
type CreateBookingRequest struct {
	CarID      string `json:"carId"`
	Car        string `json:"car"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

type ChangeStatusRequest struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func (bc *BookingController) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Pickup and return dates required")
		return
	}

	cars, err := bc.bookingService.CheckAvailability(c.Request.Context(), req.Location, req.PickupDate, req.ReturnDate)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"availableCars": cars})
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "All fields are required")
		return
	}
	carID := req.CarID
	if carID == "" {
		carID = req.Car
	}

	booking, err := bc.bookingService.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		CarID:      carID,
		PickupDate: req.PickupDate,
		ReturnDate: req.ReturnDate,
		RenterID:   c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Booking created", "booking": booking})
}

func (bc *BookingController) UserBookings(c *gin.Context) {
	bookings, err := bc.bookingService.UserBookings(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (bc *BookingController) OwnerBookings(c *gin.Context) {
	bookings, err := bc.bookingService.OwnerBookings(c.Request.Context(),
		c.GetString(middleware.ContextUserID), c.GetString(middleware.ContextRole))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (bc *BookingController) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body")
		return
	}

	booking, err := bc.bookingService.ChangeStatus(c.Request.Context(), req.BookingID, req.Status,
		c.GetString(middleware.ContextUserID))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Status updated", "booking": booking})
}
