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

	"github.com/keyportal/keyportal/internal/pkg/crs"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
	"github.com/keyportal/keyportal/pkg/id"
	"github.com/keyportal/keyportal/pkg/log"
	"gorm.io/gorm"
)

// Service-level sentinel errors, mapped to HTTP codes by the router.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("resource belongs to another user")
	ErrNameTaken = errors.New("name already in use")
)

// ICrsGateway is the slice of the relay client the key and stats services
// depend on.
type ICrsGateway interface {
	ListKeys(ctx context.Context, userId string) ([]crs.Key, error)
	CreateKey(ctx context.Context, req crs.CreateKeyRequest) (*crs.Key, error)
	UpdateKey(ctx context.Context, keyId string, patch crs.UpdateKeyPatch) (*crs.Key, error)
	DeleteKey(ctx context.Context, keyId string) error
	GetKeyStats(ctx context.Context, keyId string) (*crs.KeyStats, error)
	GetUsageTrend(ctx context.Context, params crs.TrendParams) ([]crs.TrendPoint, error)
	GetDashboard(ctx context.Context) (*crs.Dashboard, error)
}

// CreateKeyInput is the portal-facing key creation payload.
type CreateKeyInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	MonthlyLimit int64      `json:"monthlyLimit"`
	Tags         []string   `json:"tags"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

// UpdateKeyInput is a partial update; nil fields are left untouched.
type UpdateKeyInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	MonthlyLimit *int64  `json:"monthlyLimit"`
	Status       *string `json:"status"`
}

// IKeyService manages keys: every mutation goes to the relay service first,
// then the local mirror row is updated.
type IKeyService interface {
	CreateKey(ctx context.Context, userId string, input CreateKeyInput) (*model.ApiKey, error)
	ListKeys(ctx context.Context, userId string) ([]*model.ApiKey, error)
	GetKey(ctx context.Context, userId, keyId string) (*model.ApiKey, error)
	UpdateKey(ctx context.Context, userId, keyId string, input UpdateKeyInput) (*model.ApiKey, error)
	UpdateTags(ctx context.Context, userId, keyId string, tags []string) (*model.ApiKey, error)
	DeleteKey(ctx context.Context, userId, keyId string) error
}

type KeyService struct {
	crs  ICrsGateway
	keys repo.IApiKeyRepository
	now  func() time.Time
}

func NewKeyService(gateway ICrsGateway, keys repo.IApiKeyRepository) IKeyService {
	return &KeyService{crs: gateway, keys: keys, now: time.Now}
}

// CreateKey provisions the key on the relay service and mirrors it locally.
func (s *KeyService) CreateKey(ctx context.Context, userId string, input CreateKeyInput) (*model.ApiKey, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("key name is required")
	}
	taken, err := s.keys.NameExists(ctx, userId, input.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	created, err := s.crs.CreateKey(ctx, crs.CreateKeyRequest{
		Name:         input.Name,
		Description:  input.Description,
		MonthlyLimit: input.MonthlyLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("create key on relay service: %w", err)
	}

	now := s.now()
	key := &model.ApiKey{
		KeyId:        id.GetUUID(),
		UserId:       userId,
		CrsKeyId:     created.Id,
		CrsKey:       created.ApiKey,
		Name:         input.Name,
		Description:  input.Description,
		Tags:         input.Tags,
		Status:       model.KeyStatusActive,
		MonthlyLimit: input.MonthlyLimit,
		ExpiresAt:    input.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		// The relay key exists but the mirror write failed. Roll the
		// remote creation back so the two sides stay consistent.
		if delErr := s.crs.DeleteKey(ctx, created.Id); delErr != nil {
			log.Errorw("failed to roll back relay key after mirror write failure",
				"crsKeyId", created.Id, "error", delErr)
		}
		return nil, err
	}
	return key, nil
}

func (s *KeyService) ListKeys(ctx context.Context, userId string) ([]*model.ApiKey, error) {
	return s.keys.ListByUser(ctx, userId)
}

func (s *KeyService) GetKey(ctx context.Context, userId, keyId string) (*model.ApiKey, error) {
	return s.ownedKey(ctx, userId, keyId)
}

// UpdateKey pushes the patch to the relay service, then updates the mirror.
func (s *KeyService) UpdateKey(ctx context.Context, userId, keyId string, input UpdateKeyInput) (*model.ApiKey, error) {
	key, err := s.ownedKey(ctx, userId, keyId)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != key.Name {
		taken, err := s.keys.NameExists(ctx, userId, *input.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
	}

	patch := crs.UpdateKeyPatch{
		Name:         input.Name,
		Description:  input.Description,
		MonthlyLimit: input.MonthlyLimit,
	}
	if input.Status != nil {
		switch *input.Status {
		case model.KeyStatusActive, model.KeyStatusDisabled:
		default:
			return nil, fmt.Errorf("invalid key status %q", *input.Status)
		}
		active := *input.Status == model.KeyStatusActive
		patch.IsActive = &active
	}
	if _, err := s.crs.UpdateKey(ctx, key.CrsKeyId, patch); err != nil {
		return nil, fmt.Errorf("update key on relay service: %w", err)
	}

	if input.Name != nil {
		key.Name = *input.Name
	}
	if input.Description != nil {
		key.Description = *input.Description
	}
	if input.MonthlyLimit != nil {
		key.MonthlyLimit = *input.MonthlyLimit
	}
	if input.Status != nil {
		key.Status = *input.Status
	}
	key.UpdatedAt = s.now()
	if err := s.keys.Update(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// UpdateTags only touches the local mirror; tags are a portal concept the
// relay service knows nothing about.
func (s *KeyService) UpdateTags(ctx context.Context, userId, keyId string, tags []string) (*model.ApiKey, error) {
	key, err := s.ownedKey(ctx, userId, keyId)
	if err != nil {
		return nil, err
	}
	if err := s.keys.UpdateTags(ctx, keyId, tags); err != nil {
		return nil, err
	}
	key.Tags = tags
	return key, nil
}

func (s *KeyService) DeleteKey(ctx context.Context, userId, keyId string) error {
	key, err := s.ownedKey(ctx, userId, keyId)
	if err != nil {
		return err
	}
	if err := s.crs.DeleteKey(ctx, key.CrsKeyId); err != nil && !crs.IsNotFound(err) {
		return fmt.Errorf("delete key on relay service: %w", err)
	}
	return s.keys.Delete(ctx, keyId)
}

func (s *KeyService) ownedKey(ctx context.Context, userId, keyId string) (*model.ApiKey, error) {
	key, err := s.keys.Get(ctx, keyId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if key.UserId != userId {
		return nil, ErrForbidden
	}
	return key, nil
}
