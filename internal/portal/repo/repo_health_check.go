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

// IHealthCheckRepository archives aggregate health snapshots.
type IHealthCheckRepository interface {
	Create(ctx context.Context, check *model.SystemHealthCheck) error
	ListRecent(ctx context.Context, limit int) ([]*model.SystemHealthCheck, error)
}

type HealthCheckRepo struct {
	database.IDatabase
}

func NewHealthCheckRepo(db database.IDatabase) IHealthCheckRepository {
	return &HealthCheckRepo{IDatabase: db}
}

// Create archives one snapshot.
func (r *HealthCheckRepo) Create(ctx context.Context, check *model.SystemHealthCheck) error {
	return r.Database().WithContext(ctx).Table(check.TableName()).Create(check).Error
}

// ListRecent returns the latest snapshots.
func (r *HealthCheckRepo) ListRecent(ctx context.Context, limit int) ([]*model.SystemHealthCheck, error) {
	if limit <= 0 {
		limit = 20
	}
	var checks []*model.SystemHealthCheck
	err := r.Database().WithContext(ctx).
		Table((&model.SystemHealthCheck{}).TableName()).
		Order("checked_at DESC").
		Limit(limit).
		Find(&checks).Error
	return checks, err
}
