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

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyportal/keyportal/internal/pkg/notify/channel"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/internal/portal/repo"
)

// Reminder thresholds in days before expiry, most urgent first.
var reminderThresholds = []int{3, 7, 30}

// IExpirationService sends at most one reminder per key and threshold
// window as a key approaches its expiry date.
type IExpirationService interface {
	CheckKey(ctx context.Context, key *model.ApiKey) (reminded bool, err error)
}

type ExpirationService struct {
	reminders repo.IReminderRepository
	notifier  Notifier
	channels  []string
	now       func() time.Time
}

func NewExpirationService(reminders repo.IReminderRepository, notifier Notifier, channels []string) IExpirationService {
	return &ExpirationService{
		reminders: reminders,
		notifier:  notifier,
		channels:  channels,
		now:       time.Now,
	}
}

// CheckKey finds the tightest threshold window the key's expiry falls into
// and sends a reminder unless one was already recorded for that window.
// The reminder row is the idempotency gate, so re-running the daily job
// never duplicates a reminder.
func (s *ExpirationService) CheckKey(ctx context.Context, key *model.ApiKey) (bool, error) {
	if key.ExpiresAt == nil {
		return false, nil
	}
	now := s.now()
	remaining := key.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return false, nil
	}

	threshold := 0
	for _, days := range reminderThresholds {
		if remaining <= time.Duration(days)*24*time.Hour {
			threshold = days
			break
		}
	}
	if threshold == 0 {
		return false, nil
	}

	sent, err := s.reminders.Exists(ctx, key.KeyId, threshold)
	if err != nil {
		return false, fmt.Errorf("query reminder for key %s: %w", key.KeyId, err)
	}
	if sent {
		return false, nil
	}

	if s.notifier != nil {
		daysLeft := int(remaining.Hours() / 24)
		s.notifier.Dispatch(ctx, model.NotificationTypeExpiration, channel.Message{
			Title:    fmt.Sprintf("[WARNING] API key %q expires soon", key.Name),
			Body:     fmt.Sprintf("Key %q (%s) expires on %s, %d day(s) left.", key.Name, key.MaskedKey(), key.ExpiresAt.Format("2006-01-02"), daysLeft),
			Severity: model.SeverityWarning,
		}, s.channels)
	}

	err = s.reminders.Create(ctx, &model.ExpirationReminder{
		KeyId:         key.KeyId,
		ThresholdDays: threshold,
		SentAt:        now,
	})
	if err != nil {
		return false, fmt.Errorf("record reminder for key %s: %w", key.KeyId, err)
	}
	return true, nil
}
