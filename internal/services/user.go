package services

import (
	"fmt"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/models"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type UpdateUserRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
}

func (s *UserService) GetAllUsers() ([]*models.User, error) {
	return s.userRepo.FindAll()
}

func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

// Register creates a marketplace account. Self-registered accounts always
// get the user role; admins are promoted through UpdateUser.
func (s *UserService) Register(req *RegisterRequest) (*models.User, error) {
	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, fmt.Errorf("%w: username already exists", ErrValidation)
	}
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
		Status:    "active",
		Phone:     req.Phone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return s.userRepo.Create(user)
}

func (s *UserService) UpdateUser(id string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	if req.Email != "" {
		existing, _ := s.userRepo.FindByEmail(req.Email)
		if existing != nil && existing.ID.Hex() != id {
			return nil, fmt.Errorf("%w: email already exists", ErrValidation)
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	user.UpdatedAt = time.Now()

	return s.userRepo.Update(id, user)
}

func (s *UserService) DeleteUser(id string) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	if user.Role == models.RoleAdmin {
		return fmt.Errorf("%w: cannot delete admin users", ErrValidation)
	}

	return s.userRepo.Delete(id)
}

func (s *UserService) ChangePassword(id, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	user.Password = string(hashedPassword)
	user.UpdatedAt = time.Now()

	_, err = s.userRepo.Update(id, user)
	return err
}
