package handlers

import (
	"net/http"

	"github.com/Thinura66/VehicleRental-Backend/internal/api/middleware"
	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview posts a review against one of the caller's completed
// bookings
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(middleware.CallerID(c), &req)
	if err != nil {
		respondServiceError(c, "Failed to create review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Review created successfully", review)
}

// GetVehicleReviews lists reviews for a vehicle
func (h *ReviewHandler) GetVehicleReviews(c *gin.Context) {
	page := parseInt64(c.Query("page"), 1)
	limit := parseInt64(c.Query("limit"), 20)

	reviews, total, err := h.reviewService.GetVehicleReviews(c.Param("id"), page, limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve reviews", err)
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Reviews retrieved successfully", reviews,
		utils.NewPagination(page, limit, total))
}

// UpdateReview edits the caller's own review
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	review, err := h.reviewService.UpdateReview(c.Param("id"), middleware.CallerID(c), &req)
	if err != nil {
		respondServiceError(c, "Failed to update review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Review updated successfully", review)
}

// DeleteReview removes a review (owner or admin)
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	err := h.reviewService.DeleteReview(c.Param("id"), middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		respondServiceError(c, "Failed to delete review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Review deleted successfully", nil)
}

type respondToReviewRequest struct {
	Response string `json:"response" validate:"required,max=500"`
}

// RespondToReview attaches an admin response to a review. Admin only.
func (h *ReviewHandler) RespondToReview(c *gin.Context) {
	var req respondToReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	review, err := h.reviewService.RespondToReview(c.Param("id"), req.Response)
	if err != nil {
		respondServiceError(c, "Failed to respond to review", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Response added successfully", review)
}
