package biz

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/errors"
)

// UserService handles user business logic.
type UserService struct {
	store store.Factory
}

// NewUserService creates a new UserService.
func NewUserService(store store.Factory) *UserService {
	return &UserService{store: store}
}

// Create registers a new user. Username and email must be unique.
func (s *UserService) Create(ctx context.Context, user *model.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" {
		return errors.ErrInvalidParam.WithMessage("username is required")
	}
	if user.Email == "" {
		return errors.ErrInvalidParam.WithMessage("email is required")
	}

	if _, err := s.store.Users().GetByUsername(ctx, user.Username); err == nil {
		return errors.ErrAlreadyExists.WithMessagef("username %q is taken", user.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrDatabase.WithCause(err)
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound.WithMessagef("user %d not found", userID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return user, nil
}

// List returns users with pagination.
func (s *UserService) List(ctx context.Context, offset, limit int) (*model.UserList, error) {
	total, users, err := s.store.Users().List(ctx, offset, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &model.UserList{TotalCount: total, Items: users}, nil
}
