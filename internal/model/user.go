package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username  string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" validate:"required"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Name      string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex" json:"email" validate:"omitempty,email"`
	Role      string     `gorm:"type:varchar(10);not null" json:"role" validate:"required,oneof=admin cashier"`
	Active    bool       `gorm:"default:true" json:"active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is the user shape exposed by the API (no password hash).
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ToResponse converts the user to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		LastLogin: u.LastLogin,
	}
}
