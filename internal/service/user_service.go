package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/model"
	"github.com/simonbalanoff/SigEpRush-API/internal/repository"
	pkgerrors "github.com/simonbalanoff/SigEpRush-API/pkg/errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("unknown role")
)

const maxUserList = 100

// UserService is global user administration.
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, q string) ([]dto.UserResponse, error)
	UpdateRole(ctx context.Context, callerID, userID, role string) (*dto.UserResponse, error)
	// EnsureAdmin creates the seed admin when configured and absent.
	EnsureAdmin(ctx context.Context, seed *config.SeedConfig) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, q string) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx, q, maxUserList)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

func (s *userService) UpdateRole(ctx context.Context, callerID, userID, role string) (*dto.UserResponse, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if callerID == userID && role != model.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.repo.User.UpdateRole(ctx, userID, role); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("update user role failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, userID)
}

func (s *userService) EnsureAdmin(ctx context.Context, seed *config.SeedConfig) error {
	if seed == nil || seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	email := normalizeEmail(seed.AdminEmail)
	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			return s.repo.User.UpdateRole(ctx, existing.UserID, model.RoleAdmin)
		}
		return nil
	}
	if !pkgerrors.IsNotFound(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := seed.AdminName
	if name == "" {
		name = "Administrator"
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil
		}
		return err
	}

	s.logger.Info("seed admin created", zap.String("email", email))
	return nil
}
