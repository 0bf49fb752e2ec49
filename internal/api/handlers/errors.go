package handlers

import (
	"errors"
	"net/http"

	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service sentinel errors onto HTTP statuses.
func respondServiceError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidState):
		utils.ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, services.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, message, err)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, services.ErrConflict):
		utils.ErrorResponse(c, http.StatusConflict, message, err)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
