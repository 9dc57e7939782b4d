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
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/database"
)

// IApiKeyRepository defines API key mirror persistence.
type IApiKeyRepository interface {
	Create(ctx context.Context, key *model.ApiKey) error
	Get(ctx context.Context, keyId string) (*model.ApiKey, error)
	ListByUser(ctx context.Context, userId string) ([]*model.ApiKey, error)
	ListAll(ctx context.Context) ([]*model.ApiKey, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*model.ApiKey, error)
	Update(ctx context.Context, key *model.ApiKey) error
	UpdateTags(ctx context.Context, keyId string, tags model.StringList) error
	Delete(ctx context.Context, keyId string) error
	NameExists(ctx context.Context, userId, name string) (bool, error)
}

type ApiKeyRepo struct {
	database.IDatabase
}

func NewApiKeyRepo(db database.IDatabase) IApiKeyRepository {
	return &ApiKeyRepo{IDatabase: db}
}

// Create creates a new key mirror row.
func (r *ApiKeyRepo) Create(ctx context.Context, key *model.ApiKey) error {
	return r.Database().WithContext(ctx).Table(key.TableName()).Create(key).Error
}

// Get returns a key by keyId.
func (r *ApiKeyRepo) Get(ctx context.Context, keyId string) (*model.ApiKey, error) {
	var key model.ApiKey
	err := r.Database().WithContext(ctx).
		Table(key.TableName()).
		Where("key_id = ?", keyId).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// ListByUser lists all non-deleted keys owned by a user.
func (r *ApiKeyRepo) ListByUser(ctx context.Context, userId string) ([]*model.ApiKey, error) {
	var keys []*model.ApiKey
	err := r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("user_id = ? AND status <> ?", userId, model.KeyStatusDeleted).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

// ListAll lists every non-deleted key.
func (r *ApiKeyRepo) ListAll(ctx context.Context) ([]*model.ApiKey, error) {
	var keys []*model.ApiKey
	err := r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("status <> ?", model.KeyStatusDeleted).
		Find(&keys).Error
	return keys, err
}

// ListExpiringBefore lists active keys whose expiry falls before deadline.
func (r *ApiKeyRepo) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*model.ApiKey, error) {
	var keys []*model.ApiKey
	err := r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.KeyStatusActive, deadline).
		Find(&keys).Error
	return keys, err
}

// Update updates an existing key mirror row.
func (r *ApiKeyRepo) Update(ctx context.Context, key *model.ApiKey) error {
	return r.Database().WithContext(ctx).
		Table(key.TableName()).
		Where("key_id = ?", key.KeyId).
		Omit("id", "key_id", "user_id", "created_at").
		Updates(key).Error
}

// UpdateTags replaces the tag list of a key.
func (r *ApiKeyRepo) UpdateTags(ctx context.Context, keyId string, tags model.StringList) error {
	return r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("key_id = ?", keyId).
		Update("tags", tags).Error
}

// Delete marks a key deleted (the relay-side object is removed separately).
func (r *ApiKeyRepo) Delete(ctx context.Context, keyId string) error {
	return r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("key_id = ?", keyId).
		Update("status", model.KeyStatusDeleted).Error
}

// NameExists reports whether the user already has a key with the name.
func (r *ApiKeyRepo) NameExists(ctx context.Context, userId, name string) (bool, error) {
	var count int64
	err := r.Database().WithContext(ctx).
		Table((&model.ApiKey{}).TableName()).
		Where("user_id = ? AND name = ? AND status <> ?", userId, name, model.KeyStatusDeleted).
		Count(&count).Error
	return count > 0, err
}
