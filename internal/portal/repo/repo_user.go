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

package repo

import (
	"context"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/database"
)

// IUserRepository defines user persistence with context support.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, userId string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserRepo struct {
	database.IDatabase
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{IDatabase: db}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	return r.Database().WithContext(ctx).Table(user.TableName()).Create(user).Error
}

// Get returns a user by userId.
func (r *UserRepo) Get(ctx context.Context, userId string) (*model.User, error) {
	var user model.User
	err := r.Database().WithContext(ctx).
		Table(user.TableName()).
		Where("user_id = ?", userId).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.Database().WithContext(ctx).
		Table(user.TableName()).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account already uses the email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.Database().WithContext(ctx).
		Table((&model.User{}).TableName()).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
