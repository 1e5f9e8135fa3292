package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/core/services"
	"github.com/invoxel/ap_console_app/internal/dto"
)

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *UserServiceTestSuite) TestCreateUser_HashesPassword() {
	ctx := context.Background()
	creator := uuid.NewString()
	req := dto.CreateUserRequest{
		Name:     "Pat Reviewer",
		Email:    "Pat@Example.Test",
		Password: "correct horse battery",
		Role:     domain.RoleReviewer,
	}

	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		hashOK := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) == nil
		return u.Email == "pat@example.test" && u.Role == domain.RoleReviewer && hashOK
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req, creator)

	suite.Require().NoError(err)
	suite.NotEqual(req.Password, user.PasswordHash)
	suite.Equal("pat@example.test", user.Email)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()

	suite.mockRepo.On("SaveUser", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	user, err := suite.service.CreateUser(ctx, dto.CreateUserRequest{
		Name: "Pat", Email: "pat@example.test", Password: "password123", Role: domain.RoleReviewer,
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	ctx := context.Background()
	password := "correct horse battery"
	hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	suite.Require().NoError(hashErr)
	stored := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat@example.test",
		PasswordHash: string(hash),
	}

	suite.mockRepo.On("FindUserByEmail", ctx, "pat@example.test").Return(stored, nil).Once()

	user, err := suite.service.Authenticate(ctx, "  Pat@Example.Test ", password)

	suite.Require().NoError(err)
	suite.Equal(stored.UserID, user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	hash, hashErr := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	suite.Require().NoError(hashErr)
	stored := &domain.User{Email: "pat@example.test", PasswordHash: string(hash)}

	suite.mockRepo.On("FindUserByEmail", ctx, "pat@example.test").Return(stored, nil).Once()

	user, err := suite.service.Authenticate(ctx, "pat@example.test", "wrong")

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownEmailMapsToUnauthorized() {
	ctx := context.Background()

	suite.mockRepo.On("FindUserByEmail", ctx, "ghost@example.test").Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.Authenticate(ctx, "ghost@example.test", "whatever")

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestDeleteUser_SelfDeleteRefused() {
	userID := uuid.NewString()

	err := suite.service.DeleteUser(context.Background(), userID, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeleteUser_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	actor := uuid.NewString()

	suite.mockRepo.On("MarkUserDeleted", ctx, userID, actor).Return(nil).Once()

	err := suite.service.DeleteUser(ctx, userID, actor)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_RoleChange() {
	ctx := context.Background()
	userID := uuid.NewString()
	existing := &domain.User{UserID: userID, Name: "Pat", Role: domain.RoleReviewer}
	newRole := domain.RoleManager

	suite.mockRepo.On("FindUserByID", ctx, userID).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleManager && u.Name == "Pat"
	})).Return(nil).Once()

	user, err := suite.service.UpdateUser(ctx, userID, dto.UpdateUserRequest{Role: &newRole}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.RoleManager, user.Role)
}

// --- Run Suite ---
func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
