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

// ICronJobLogRepository defines cron execution history persistence.
type ICronJobLogRepository interface {
	Create(ctx context.Context, logRow *model.CronJobLog) error
	Update(ctx context.Context, logRow *model.CronJobLog) error
	ListRecent(ctx context.Context, jobName string, limit int) ([]*model.CronJobLog, error)
}

type CronJobLogRepo struct {
	database.IDatabase
}

func NewCronJobLogRepo(db database.IDatabase) ICronJobLogRepository {
	return &CronJobLogRepo{IDatabase: db}
}

// Create inserts the RUNNING row for a starting execution.
func (r *CronJobLogRepo) Create(ctx context.Context, logRow *model.CronJobLog) error {
	return r.Database().WithContext(ctx).Table(logRow.TableName()).Create(logRow).Error
}

// Update finalizes the row once the execution finishes.
func (r *CronJobLogRepo) Update(ctx context.Context, logRow *model.CronJobLog) error {
	return r.Database().WithContext(ctx).
		Table(logRow.TableName()).
		Where("id = ?", logRow.Id).
		Select("status", "end_at", "duration", "result", "error").
		Updates(logRow).Error
}

// ListRecent returns the latest executions, optionally filtered by job name.
func (r *CronJobLogRepo) ListRecent(ctx context.Context, jobName string, limit int) ([]*model.CronJobLog, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.Database().WithContext(ctx).
		Table((&model.CronJobLog{}).TableName())
	if jobName != "" {
		query = query.Where("job_name = ?", jobName)
	}
	var logs []*model.CronJobLog
	err := query.Order("start_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
