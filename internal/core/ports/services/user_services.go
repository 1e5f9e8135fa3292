package services

import (
	"context"
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// UserSvcFacade manages reviewer and approver accounts.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorUserID string) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string, actorUserID string) error

	// Authenticate verifies credentials and returns the user.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// TokenSvcFacade issues access tokens.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
