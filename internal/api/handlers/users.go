package handlers

import (
	"net/http"

	"github.com/Thinura66/VehicleRental-Backend/internal/api/middleware"
	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService *services.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// GetUsers lists all accounts. Admin only.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve users", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

// GetUser returns a single account. Admins see anyone, users only
// themselves.
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")

	if !middleware.IsAdmin(c) && middleware.CallerID(c) != id {
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied", nil)
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		respondServiceError(c, "Failed to retrieve user", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

// UpdateUser edits an account. Role and status changes are admin only.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	if !middleware.IsAdmin(c) {
		if middleware.CallerID(c) != id {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied", nil)
			return
		}
		if req.Role != "" || req.Status != "" {
			utils.ErrorResponse(c, http.StatusForbidden, "Only admins can change role or status", nil)
			return
		}
	}

	user, err := h.userService.UpdateUser(id, &req)
	if err != nil {
		respondServiceError(c, "Failed to update user", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser removes an account. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	if err := h.userService.DeleteUser(id); err != nil {
		respondServiceError(c, "Failed to delete user", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword lets the authenticated user rotate their password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	if err := h.userService.ChangePassword(middleware.CallerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, "Failed to change password", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}
