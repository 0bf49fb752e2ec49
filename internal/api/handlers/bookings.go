package handlers

import (
	"net/http"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/api/middleware"
	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookingHandler struct {
	bookingService *services.BookingService
	validator      *validator.Validate
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator.New(),
	}
}

// CreateBooking submits a rental request for a vehicle
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(middleware.CallerID(c), &req)
	if err != nil {
		respondServiceError(c, "Failed to create booking", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Booking created successfully", booking)
}

// GetBookings lists bookings. Users see their own; admins see all and
// may filter by userId.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	query := &services.BookingListQuery{
		Status:    models.BookingStatus(c.Query("status")),
		UserID:    c.Query("userId"),
		VehicleID: c.Query("vehicleId"),
		Page:      parseInt64(c.Query("page"), 1),
		Limit:     parseInt64(c.Query("limit"), 20),
		Sort:      c.Query("sort"),
	}

	bookings, total, err := h.bookingService.GetBookings(query, middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		respondServiceError(c, "Failed to retrieve bookings", err)
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Bookings retrieved successfully", bookings,
		utils.NewPagination(query.Page, query.Limit, total))
}

// GetBooking returns a single booking to its owner or an admin
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Param("id"), middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		respondServiceError(c, "Failed to retrieve booking", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking retrieved successfully", booking)
}

// CheckAvailability reports whether a vehicle is free for a window
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	vehicleID := c.Query("vehicleId")
	if vehicleID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "vehicleId is required", nil)
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("startDate"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "startDate must be RFC3339", err)
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("endDate"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "endDate must be RFC3339", err)
		return
	}

	if !end.After(start) {
		utils.ErrorResponse(c, http.StatusBadRequest, "endDate must be after startDate", nil)
		return
	}

	available, err := h.bookingService.CheckAvailability(vehicleID, start, end, "")
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to check availability", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability checked", gin.H{
		"vehicleId": vehicleID,
		"startDate": start,
		"endDate":   end,
		"available": available,
	})
}

// UpdateStatus applies a lifecycle transition. Admin only.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, "Failed to update booking status", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking status updated successfully", booking)
}

// CancelBooking cancels a pending or approved booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req services.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Param("id"), req.CancellationReason, middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		respondServiceError(c, "Failed to cancel booking", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking cancelled successfully", booking)
}

// GetStats returns the admin dashboard aggregates. Admin only.
func (h *BookingHandler) GetStats(c *gin.Context) {
	stats, err := h.bookingService.GetStats()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve booking stats", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Booking stats retrieved successfully", stats)
}
