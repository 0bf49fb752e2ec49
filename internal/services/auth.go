package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"
	"github.com/Thinura66/VehicleRental-Backend/pkg/email"
	"github.com/Thinura66/VehicleRental-Backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo     *repository.UserRepository
	jwtUtil      *jwt.JWTUtil
	emailService *email.EmailService
}

func NewAuthService(userRepo *repository.UserRepository, emailService *email.EmailService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtUtil:      jwt.NewJWTUtil(),
		emailService: emailService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *models.AuthUser `json:"user"`
	Token string           `json:"token"`
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	if user.Status != "active" {
		return nil, fmt.Errorf("%w: account is not active", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	now := time.Now()
	user.LastLogin = &now
	if _, err := s.userRepo.Update(user.ID.Hex(), user); err != nil {
		log.Printf("failed to record last login for %s: %v", user.ID.Hex(), err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		User:  authUserFrom(user),
		Token: token,
	}, nil
}

func (s *AuthService) RefreshToken(userID string) (string, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if user.Status != "active" {
		return "", fmt.Errorf("%w: account is not active", ErrForbidden)
	}

	return s.jwtUtil.GenerateToken(user.ID.Hex(), user.Email, user.Role)
}

func (s *AuthService) GetUserProfile(userID string) (*models.AuthUser, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if user.Status != "active" {
		return nil, fmt.Errorf("%w: account is not active", ErrForbidden)
	}

	return authUserFrom(user), nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a hashed single-use reset token valid for 24h. A
// missing account is not reported to the caller.
func (s *AuthService) ForgotPassword(address string) error {
	user, err := s.userRepo.FindByEmail(address)
	if err != nil {
		return nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash reset token: %w", err)
	}

	expiry := time.Now().Add(24 * time.Hour)
	if err := s.userRepo.UpdatePasswordResetToken(address, string(hashedToken), expiry); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.emailService == nil {
		log.Printf("SMTP not configured, skipping reset email for %s", user.Email)
		return nil
	}

	if err := s.emailService.SendPasswordResetEmail(user.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ResetPassword completes the flow. Tokens are stored hashed, so each
// candidate user's hash is compared against the presented token.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	users, err := s.userRepo.FindWithResetTokens()
	if err != nil {
		return fmt.Errorf("failed to process reset request: %w", err)
	}

	var matched *models.User
	for _, user := range users {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordResetToken), []byte(token)); err == nil {
			matched = user
			break
		}
	}

	if matched == nil {
		return fmt.Errorf("%w: invalid or expired reset token", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	matched.Password = string(hashedPassword)
	matched.UpdatedAt = time.Now()

	if _, err := s.userRepo.Update(matched.ID.Hex(), matched); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.userRepo.ClearPasswordResetToken(matched.ID.Hex()); err != nil {
		log.Printf("failed to clear reset token for %s: %v", matched.ID.Hex(), err)
	}

	return nil
}

func authUserFrom(user *models.User) *models.AuthUser {
	return &models.AuthUser{
		ID:        user.ID.Hex(),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}
