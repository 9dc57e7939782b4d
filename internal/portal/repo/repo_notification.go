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

// INotificationRepository records outbound notification attempts.
type INotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListRecent(ctx context.Context, limit int) ([]*model.Notification, error)
}

type NotificationRepo struct {
	database.IDatabase
}

func NewNotificationRepo(db database.IDatabase) INotificationRepository {
	return &NotificationRepo{IDatabase: db}
}

// Create records one notification attempt.
func (r *NotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	return r.Database().WithContext(ctx).Table(notification.TableName()).Create(notification).Error
}

// ListRecent returns the latest notification attempts.
func (r *NotificationRepo) ListRecent(ctx context.Context, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []*model.Notification
	err := r.Database().WithContext(ctx).
		Table((&model.Notification{}).TableName()).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
