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

package model

import "time"

// Cron job execution states.
const (
	CronJobStatusRunning = "RUNNING"
	CronJobStatusSuccess = "SUCCESS"
	CronJobStatusFailed  = "FAILED"
)

// CronJobLog is one row per job execution. It is created when a job starts
// and updated exactly once when the job finishes; never deleted here.
type CronJobLog struct {
	Id       int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobName  string         `gorm:"column:job_name;type:VARCHAR(64);index" json:"jobName"`
	Status   string         `gorm:"column:status;type:VARCHAR(16)" json:"status"`
	StartAt  time.Time      `gorm:"column:start_at;type:DATETIME" json:"startAt"`
	EndAt    *time.Time     `gorm:"column:end_at;type:DATETIME" json:"endAt,omitempty"`
	Duration int64          `gorm:"column:duration;type:BIGINT" json:"duration,omitempty"` // milliseconds
	Result   map[string]any `gorm:"column:result;type:JSON;serializer:json" json:"result,omitempty"`
	Error    string         `gorm:"column:error;type:TEXT" json:"error,omitempty"`
}

func (CronJobLog) TableName() string {
	return "kp_cron_job_log"
}
