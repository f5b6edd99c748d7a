package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
)

type AuthService interface {
	Login(username, password, ipAddress, userAgent string) (*LoginResponse, error)
	Logout(userID uuid.UUID) error
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	activity ActivityService
}

func NewAuthService(userRepo repository.UserRepository, activity ActivityService) AuthService {
	return &authService{
		userRepo: userRepo,
		activity: activity,
	}
}

func (s *authService) Login(username, password, ipAddress, userAgent string) (*LoginResponse, error) {
	// 1. Find user by username
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.Active {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Update last login
	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 5. Audit trail
	s.activity.Record(&model.ActivityLog{
		UserID:      user.ID,
		Action:      model.ActionLogin,
		Description: fmt.Sprintf("%s (@%s) logged in as %s", user.Name, user.Username, user.Role),
		Resource:    "User",
		ResourceID:  &user.ID,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	})

	// 6. Generate JWT token
	token, err := jwt.GenerateToken(user.ID, user.Username, user.Name, user.Role)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

func (s *authService) Logout(userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	s.activity.Record(&model.ActivityLog{
		UserID:      user.ID,
		Action:      model.ActionLogout,
		Description: fmt.Sprintf("%s (@%s) logged out", user.Name, user.Username),
		Resource:    "User",
		ResourceID:  &user.ID,
	})
	return nil
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
