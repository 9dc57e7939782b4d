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

// User is a portal account.
type User struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserId       string    `gorm:"column:user_id;type:VARCHAR(64);uniqueIndex" json:"userId"`
	Email        string    `gorm:"column:email;type:VARCHAR(255);uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:VARCHAR(255)" json:"-"`
	Nickname     string    `gorm:"column:nickname;type:VARCHAR(64)" json:"nickname"`
	CreatedAt    time.Time `gorm:"column:created_at;type:DATETIME" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:DATETIME" json:"updatedAt"`
}

func (User) TableName() string {
	return "kp_user"
}
