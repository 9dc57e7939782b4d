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

// Metric types evaluated by alert rules.
const (
	MetricResponseTime = "RESPONSE_TIME"
	MetricQPS          = "QPS"
	MetricMemoryUsage  = "MEMORY_USAGE"
	MetricErrorRate    = "ERROR_RATE"
)

// Threshold comparison conditions.
const (
	ConditionGreaterThan = "GREATER_THAN"
	ConditionLessThan    = "LESS_THAN"
	ConditionEqualTo     = "EQUAL_TO"
)

// Alert severities.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Alert record lifecycle states.
const (
	AlertStatusFiring   = "FIRING"
	AlertStatusResolved = "RESOLVED"
	AlertStatusSilenced = "SILENCED"
)

// AlertRule is an operator-defined threshold policy. The evaluation engine
// treats rules as read-only input.
type AlertRule struct {
	Id        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RuleId    string     `gorm:"column:rule_id;type:VARCHAR(64);uniqueIndex" json:"ruleId"`
	Name      string     `gorm:"column:name;type:VARCHAR(128)" json:"name"`
	Metric    string     `gorm:"column:metric;type:VARCHAR(32)" json:"metric"`
	Condition string     `gorm:"column:condition;type:VARCHAR(32)" json:"condition"`
	Threshold float64    `gorm:"column:threshold;type:DOUBLE" json:"threshold"`
	Severity  string     `gorm:"column:severity;type:VARCHAR(16)" json:"severity"`
	Channels  StringList `gorm:"column:channels;type:JSON" json:"channels"`
	Enabled   bool       `gorm:"column:enabled;type:TINYINT(1)" json:"enabled"`
	CreatedAt time.Time  `gorm:"column:created_at;type:DATETIME" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at;type:DATETIME" json:"updatedAt"`
}

func (AlertRule) TableName() string {
	return "kp_alert_rule"
}

// AlertRecord is one triggered alert lifecycle instance. At most one FIRING
// record exists per rule at any time; that check is the de-duplication gate.
type AlertRecord struct {
	Id          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RuleId      string     `gorm:"column:rule_id;type:VARCHAR(64);index" json:"ruleId"`
	Status      string     `gorm:"column:status;type:VARCHAR(16);index" json:"status"`
	Message     string     `gorm:"column:message;type:TEXT" json:"message"`
	Value       float64    `gorm:"column:value;type:DOUBLE" json:"value"`
	TriggeredAt time.Time  `gorm:"column:triggered_at;type:DATETIME" json:"triggeredAt"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at;type:DATETIME" json:"resolvedAt,omitempty"`
}

func (AlertRecord) TableName() string {
	return "kp_alert_record"
}
