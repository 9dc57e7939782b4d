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

// Health states for individual probes and the overall rollup.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

// ProbeResult is one service probe outcome.
type ProbeResult struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTime"` // milliseconds
	Error        string `json:"error,omitempty"`
}

// SystemHealthCheck is an aggregate snapshot of all probes. Rows are written
// once per check and never mutated.
type SystemHealthCheck struct {
	Id        int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Overall   string      `gorm:"column:overall;type:VARCHAR(16)" json:"overall"`
	Database  ProbeResult `gorm:"column:database;type:JSON;serializer:json" json:"database"`
	Redis     ProbeResult `gorm:"column:redis;type:JSON;serializer:json" json:"redis"`
	Crs       ProbeResult `gorm:"column:crs;type:JSON;serializer:json" json:"crs"`
	CheckedAt time.Time   `gorm:"column:checked_at;type:DATETIME;index" json:"checkedAt"`
}

func (SystemHealthCheck) TableName() string {
	return "kp_system_health_check"
}
