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

// Notification delivery outcomes.
const (
	NotificationStatusSent   = "SENT"
	NotificationStatusFailed = "FAILED"
)

// Notification kinds.
const (
	NotificationTypeAlert      = "ALERT"
	NotificationTypeResolved   = "ALERT_RESOLVED"
	NotificationTypeExpiration = "KEY_EXPIRATION"
)

// Notification is a persisted record of one outbound notification attempt.
type Notification struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type      string    `gorm:"column:type;type:VARCHAR(32)" json:"type"`
	Title     string    `gorm:"column:title;type:VARCHAR(255)" json:"title"`
	Message   string    `gorm:"column:message;type:TEXT" json:"message"`
	Channel   string    `gorm:"column:channel;type:VARCHAR(32)" json:"channel"`
	Status    string    `gorm:"column:status;type:VARCHAR(16)" json:"status"`
	Error     string    `gorm:"column:error;type:TEXT" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;type:DATETIME" json:"createdAt"`
}

func (Notification) TableName() string {
	return "kp_notification"
}
