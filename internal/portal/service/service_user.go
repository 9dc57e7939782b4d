// Copyright 2026 Key Portal Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/pkg/http/middleware"
	"github.com/keyportal/keyportal/pkg/id"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// IUserService handles account registration and login.
type IUserService interface {
	Register(ctx context.Context, email, password, nickname string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Get(ctx context.Context, userId string) (*model.User, error)
}

type UserService struct {
	users     repo.IUserRepository
	jwtSecret string
	jwtExpire time.Duration
	now       func() time.Time
}

func NewUserService(users repo.IUserRepository, jwtSecret string, jwtExpire time.Duration) IUserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpire: jwtExpire,
		now:       time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, email, password, nickname string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		UserId:       id.GetUUID(),
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the user plus a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := middleware.SignToken(s.jwtSecret, user.UserId, user.Email, s.jwtExpire)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, userId string) (*model.User, error) {
	user, err := s.users.Get(ctx, userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}
