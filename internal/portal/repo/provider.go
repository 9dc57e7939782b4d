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

import "github.com/keyportal/keyportal/pkg/database"

// Repositories bundles all repositories for injection.
type Repositories struct {
	Users         IUserRepository
	ApiKeys       IApiKeyRepository
	CronJobLogs   ICronJobLogRepository
	AlertRules    IAlertRuleRepository
	AlertRecords  IAlertRecordRepository
	HealthChecks  IHealthCheckRepository
	Reminders     IReminderRepository
	Notifications INotificationRepository
}

// NewRepositories constructs every repository over one database handle.
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		Users:         NewUserRepo(db),
		ApiKeys:       NewApiKeyRepo(db),
		CronJobLogs:   NewCronJobLogRepo(db),
		AlertRules:    NewAlertRuleRepo(db),
		AlertRecords:  NewAlertRecordRepo(db),
		HealthChecks:  NewHealthCheckRepo(db),
		Reminders:     NewReminderRepo(db),
		Notifications: NewNotificationRepo(db),
	}
}
