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
	"testing"
	"time"

	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeReminderRepo struct {
	sent map[string]bool
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{sent: map[string]bool{}}
}

func (f *fakeReminderRepo) key(keyId string, days int) string {
	return fmt.Sprintf("%s/%d", keyId, days)
}

func (f *fakeReminderRepo) Exists(_ context.Context, keyId string, thresholdDays int) (bool, error) {
	return f.sent[f.key(keyId, thresholdDays)], nil
}

func (f *fakeReminderRepo) Create(_ context.Context, reminder *model.ExpirationReminder) error {
	f.sent[f.key(reminder.KeyId, reminder.ThresholdDays)] = true
	return nil
}

func expiringKey(keyId string, expiresIn time.Duration) *model.ApiKey {
	expiresAt := time.Now().Add(expiresIn)
	return &model.ApiKey{
		KeyId:     keyId,
		Name:      "prod-key",
		CrsKey:    "sk-abcdef1234567890",
		ExpiresAt: &expiresAt,
	}
}

func TestCheckKeyThresholdWindows(t *testing.T) {
	cases := []struct {
		name      string
		expiresIn time.Duration
		reminded  bool
	}{
		{"expires in 2 days", 48 * time.Hour, true},
		{"expires in 5 days", 5 * 24 * time.Hour, true},
		{"expires in 20 days", 20 * 24 * time.Hour, true},
		{"expires in 60 days", 60 * 24 * time.Hour, false},
		{"already expired", -time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reminders := newFakeReminderRepo()
			notifier := &fakeNotifier{}
			svc := NewExpirationService(reminders, notifier, []string{"email"})

			reminded, err := svc.CheckKey(context.Background(), expiringKey("key-1", tc.expiresIn))
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if reminded != tc.reminded {
				t.Fatalf("reminded = %v, want %v", reminded, tc.reminded)
			}
			if got := len(notifier.dispatched); (got == 1) != tc.reminded {
				t.Fatalf("notifications = %d", got)
			}
		})
	}
}

func TestCheckKeyWithoutExpiry(t *testing.T) {
	svc := NewExpirationService(newFakeReminderRepo(), &fakeNotifier{}, nil)
	reminded, err := svc.CheckKey(context.Background(), &model.ApiKey{KeyId: "key-1"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if reminded {
		t.Fatal("keys without an expiry never get reminders")
	}
}

func TestCheckKeyIsIdempotentPerThreshold(t *testing.T) {
	reminders := newFakeReminderRepo()
	notifier := &fakeNotifier{}
	svc := NewExpirationService(reminders, notifier, []string{"email"})
	key := expiringKey("key-1", 48*time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := svc.CheckKey(context.Background(), key); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	if len(notifier.dispatched) != 1 {
		t.Fatalf("notifications = %d, want exactly 1 for repeated daily runs", len(notifier.dispatched))
	}
}
