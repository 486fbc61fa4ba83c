package services

import (
	"context"
	"errors"
	"strings"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, login, name string, admin bool) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, login, name string, admin bool) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, errors.New("login is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = login
	}
	u := &models.User{
		Login: login,
		Name:  name,
		Admin: admin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, repositories.ErrUserNotFound
	}
	return s.users.FindByID(ctx, id)
}

func (s *userService) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.users.FindByLogin(ctx, strings.TrimSpace(login))
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}
