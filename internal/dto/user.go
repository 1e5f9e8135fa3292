package dto

import (
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// CreateUserRequest defines the data needed to create a user account.
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=REVIEWER MANAGER CFO ADMIN"`
}

// UpdateUserRequest edits a user. Pointers distinguish "not provided" from
// zero values.
type UpdateUserRequest struct {
	Name *string          `json:"name"`
	Role *domain.UserRole `json:"role" binding:"omitempty,oneof=REVIEWER MANAGER CFO ADMIN"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse mirrors domain.User without credential material.
type UserResponse struct {
	UserID    string          `json:"userID"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ToListUsersResponse converts a list of users.
func ToListUsersResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// LoginResponse returns the issued token and its expiry.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
