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

// IReminderRepository gates expiration reminders per (key, threshold).
type IReminderRepository interface {
	Exists(ctx context.Context, keyId string, thresholdDays int) (bool, error)
	Create(ctx context.Context, reminder *model.ExpirationReminder) error
}

type ReminderRepo struct {
	database.IDatabase
}

func NewReminderRepo(db database.IDatabase) IReminderRepository {
	return &ReminderRepo{IDatabase: db}
}

// Exists reports whether a reminder was already sent for the pair.
func (r *ReminderRepo) Exists(ctx context.Context, keyId string, thresholdDays int) (bool, error) {
	var count int64
	err := r.Database().WithContext(ctx).
		Table((&model.ExpirationReminder{}).TableName()).
		Where("key_id = ? AND threshold_days = ?", keyId, thresholdDays).
		Count(&count).Error
	return count > 0, err
}

// Create records a sent reminder.
func (r *ReminderRepo) Create(ctx context.Context, reminder *model.ExpirationReminder) error {
	return r.Database().WithContext(ctx).Table(reminder.TableName()).Create(reminder).Error
}
