package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/modern_shop/internal/events"
	"github.com/Skotchmaster/modern_shop/internal/models"
	"github.com/Skotchmaster/modern_shop/internal/repo"
	"github.com/Skotchmaster/modern_shop/internal/transport"
	"github.com/Skotchmaster/modern_shop/pkg/hash"
	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

type UserService struct {
	Events events.Publisher
}

func (s *UserService) CreateUser(ctx context.Context, sess *gorm.DB, in transport.UserCreate) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: pwHash,
	}
	if err := repo.New(sess).CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.Events != nil {
		event := map[string]any{
			"type":      "user_created",
			"userID":    user.ID,
			"email":     user.Email,
			"timestamp": time.Now().UTC(),
		}
		key := strconv.FormatUint(uint64(user.ID), 10)
		if err := s.Events.Publish(ctx, events.TopicUsers, key, event); err != nil {
			l.Error("publish_error", "topic", events.TopicUsers, "error", err)
		}
	}

	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, sess *gorm.DB, in transport.LoginRequest) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := repo.New(sess).GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, sess *gorm.DB, id uint) (*models.User, error) {
	user, err := repo.New(sess).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}
