package service

import (
	"context"
	"errors"

	"github.com/sweetshop/backend/internal/hash"
	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/repo"
)

// ErrInvalidCredentials covers both an unknown username and a failed
// password check, so a caller cannot probe which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

type AuthService struct {
	Users UserStore
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			l.Warn("register failed", "reason", "duplicate username")
			return nil, err
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login failed", "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	l.Info("user logged in", "user_id", user.ID)
	return user, nil
}
