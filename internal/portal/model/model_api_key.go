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

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a string slice as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported StringList column type %T", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Key status values mirrored from the relay service.
const (
	KeyStatusActive   = "active"
	KeyStatusDisabled = "disabled"
	KeyStatusDeleted  = "deleted"
)

// ApiKey is the local mirror of a relay service key.
type ApiKey struct {
	Id           int64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	KeyId        string     `gorm:"column:key_id;type:VARCHAR(64);uniqueIndex" json:"keyId"`
	UserId       string     `gorm:"column:user_id;type:VARCHAR(64);index" json:"userId"`
	CrsKeyId     string     `gorm:"column:crs_key_id;type:VARCHAR(64);index" json:"crsKeyId"`
	CrsKey       string     `gorm:"column:crs_key;type:VARCHAR(255)" json:"-"`
	Name         string     `gorm:"column:name;type:VARCHAR(128)" json:"name"`
	Description  string     `gorm:"column:description;type:TEXT" json:"description,omitempty"`
	Tags         StringList `gorm:"column:tags;type:JSON" json:"tags"`
	Status       string     `gorm:"column:status;type:VARCHAR(32)" json:"status"`
	MonthlyLimit int64      `gorm:"column:monthly_limit;type:BIGINT" json:"monthlyLimit,omitempty"`
	ExpiresAt    *time.Time `gorm:"column:expires_at;type:DATETIME" json:"expiresAt,omitempty"`
	LastUsedAt   *time.Time `gorm:"column:last_used_at;type:DATETIME" json:"lastUsedAt,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:DATETIME" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:DATETIME" json:"updatedAt"`
}

func (ApiKey) TableName() string {
	return "kp_api_key"
}

// MaskedKey returns the relay key with the middle section hidden.
func (k *ApiKey) MaskedKey() string {
	if len(k.CrsKey) <= 8 {
		return "****"
	}
	return k.CrsKey[:4] + "****" + k.CrsKey[len(k.CrsKey)-4:]
}

// ExpirationReminder records one reminder sent for a key nearing expiry.
// Uniqueness of (key, threshold) gates repeat reminders.
type ExpirationReminder struct {
	Id            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	KeyId         string    `gorm:"column:key_id;type:VARCHAR(64);uniqueIndex:uniq_key_threshold,priority:1" json:"keyId"`
	ThresholdDays int       `gorm:"column:threshold_days;type:INT;uniqueIndex:uniq_key_threshold,priority:2" json:"thresholdDays"`
	SentAt        time.Time `gorm:"column:sent_at;type:DATETIME" json:"sentAt"`
}

func (ExpirationReminder) TableName() string {
	return "kp_expiration_reminder"
}
