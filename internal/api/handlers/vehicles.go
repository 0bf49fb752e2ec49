package handlers

import (
	"net/http"
	"strconv"

	"github.com/Thinura66/VehicleRental-Backend/internal/api/middleware"
	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	validator      *validator.Validate
}

func NewVehicleHandler(vehicleService *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		validator:      validator.New(),
	}
}

// GetVehicles lists the catalog with optional filters
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	query := &services.VehicleSearchQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     parseInt64(c.Query("page"), 1),
		Limit:    parseInt64(c.Query("limit"), 20),
	}

	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.MaxPrice = &f
		}
	}
	if v := c.Query("available"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			query.Available = &b
		}
	}
	if v := c.Query("longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.Longitude = &f
		}
	}
	if v := c.Query("latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.Latitude = &f
		}
	}
	if v := c.Query("radius"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.RadiusKm = &f
		}
	}

	vehicles, total, err := h.vehicleService.SearchVehicles(query)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve vehicles", err)
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles,
		utils.NewPagination(query.Page, query.Limit, total))
}

// GetVehicle returns a single listing
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicleByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, "Failed to retrieve vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// CreateVehicle adds a listing. Admin only.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(middleware.CallerID(c), &req)
	if err != nil {
		respondServiceError(c, "Failed to create vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle edits a listing. Admin only.
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, "Failed to update vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

// DeleteVehicle removes a listing and its images. Admin only.
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Param("id")); err != nil {
		respondServiceError(c, "Failed to delete vehicle", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}

// UploadImage attaches an image to a listing. Admin only.
func (h *VehicleHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Image file is required", err)
		return
	}

	vehicle, err := h.vehicleService.AddVehicleImage(c.Param("id"), file)
	if err != nil {
		respondServiceError(c, "Failed to upload image", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Image uploaded successfully", vehicle)
}

// DeleteImage detaches an image from a listing. Admin only.
func (h *VehicleHandler) DeleteImage(c *gin.Context) {
	vehicle, err := h.vehicleService.RemoveVehicleImage(c.Param("id"), c.Param("filename"))
	if err != nil {
		respondServiceError(c, "Failed to delete image", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Image deleted successfully", vehicle)
}

func parseInt64(value string, fallback int64) int64 {
	if value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
