package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
}

// UpdateUserRequest carries the fields an admin may change. Nil means
// leave unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

type UserService interface {
	CreateUser(req *CreateUserRequest, actorID uuid.UUID) (*model.UserResponse, error)
	UpdateUser(id uuid.UUID, req *UpdateUserRequest, actorID uuid.UUID) (*model.UserResponse, error)
	GetUsers() ([]model.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	activity ActivityService
}

func NewUserService(userRepo repository.UserRepository, activity ActivityService) UserService {
	return &userService{userRepo: userRepo, activity: activity}
}

func (s *userService) CreateUser(req *CreateUserRequest, actorID uuid.UUID) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs[0].Describe())
	}

	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, ErrUsernameExists
	}

	user := &model.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Active:   true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionCreateUser,
		Description: fmt.Sprintf("Created new %s user: %s (@%s)", user.Role, user.Name, user.Username),
		Resource:    "User",
		ResourceID:  &user.ID,
	})

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(id uuid.UUID, req *UpdateUserRequest, actorID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changed := []string{}
	if req.Name != nil {
		user.Name = *req.Name
		changed = append(changed, "name")
	}
	if req.Email != nil {
		user.Email = *req.Email
		changed = append(changed, "email")
	}
	if req.Role != nil {
		if *req.Role != model.RoleAdmin && *req.Role != model.RoleCashier {
			return nil, errors.New("invalid role")
		}
		user.Role = *req.Role
		changed = append(changed, "role")
	}
	if req.Active != nil {
		user.Active = *req.Active
		changed = append(changed, "active")
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, errors.New("password must be at least 6 characters")
		}
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		changed = append(changed, "password")
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.activity.Record(&model.ActivityLog{
		UserID:      actorID,
		Action:      model.ActionUpdateUser,
		Description: fmt.Sprintf("Updated user: %s (@%s)", user.Name, user.Username),
		Resource:    "User",
		ResourceID:  &user.ID,
		Metadata:    map[string]interface{}{"updates": changed},
	})

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}
