package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/dto"
	"github.com/invoxel/ap_console_app/internal/utils"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the user account service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers an account with a hashed password.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         req.Role,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves an account.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// ListUsers retrieves accounts ordered by name.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.ListUsers(ctx, limit, offset)
}

// UpdateUser edits an account's name or role.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorUserID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = actorUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser soft deletes an account. Audit entries keep referencing the id.
func (s *userService) DeleteUser(ctx context.Context, userID string, actorUserID string) error {
	if userID == actorUserID {
		return fmt.Errorf("%w: cannot delete your own account", apperrors.ErrValidation)
	}
	return s.userRepo.MarkUserDeleted(ctx, userID, actorUserID)
}

// Authenticate verifies credentials. Unknown email and wrong password both
// return ErrUnauthorized so a caller cannot probe which addresses exist.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	return user, nil
}
