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

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/keyportal/keyportal/internal/pkg/notify/channel"
	"github.com/keyportal/keyportal/internal/portal/model"
)

type fakeChannel struct {
	name string
	err  error
	sent []channel.Message
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, message channel.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeChannel) Validate() error { return nil }

type fakeNotificationStore struct {
	rows []*model.Notification
}

func (f *fakeNotificationStore) Create(_ context.Context, row *model.Notification) error {
	f.rows = append(f.rows, row)
	return nil
}

func TestDispatchRecordsEveryAttempt(t *testing.T) {
	store := &fakeNotificationStore{}
	good := &fakeChannel{name: "email"}
	bad := &fakeChannel{name: "webhook", err: errors.New("endpoint unreachable")}

	sender := NewSender(nil, store)
	sender.RegisterChannel(good)
	sender.RegisterChannel(bad)

	message := channel.Message{Title: "[CRITICAL] error rate high", Body: "value 12.5", Severity: model.SeverityCritical}
	sent := sender.Dispatch(context.Background(), model.NotificationTypeAlert, message, []string{"email", "webhook", "pager"})

	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(good.sent) != 1 {
		t.Fatalf("email deliveries = %d, want 1", len(good.sent))
	}
	if len(store.rows) != 3 {
		t.Fatalf("recorded rows = %d, want 3", len(store.rows))
	}

	byChannel := map[string]*model.Notification{}
	for _, row := range store.rows {
		byChannel[row.Channel] = row
	}
	if byChannel["email"].Status != model.NotificationStatusSent {
		t.Fatalf("email status = %s", byChannel["email"].Status)
	}
	if byChannel["webhook"].Status != model.NotificationStatusFailed || byChannel["webhook"].Error == "" {
		t.Fatalf("webhook row = %+v", byChannel["webhook"])
	}
	if byChannel["pager"].Status != model.NotificationStatusFailed {
		t.Fatalf("unconfigured channel status = %s", byChannel["pager"].Status)
	}
}

func TestDispatchWithoutStore(t *testing.T) {
	sender := NewSender(nil, nil)
	sender.RegisterChannel(&fakeChannel{name: "email"})

	sent := sender.Dispatch(context.Background(), model.NotificationTypeAlert,
		channel.Message{Title: "t", Body: "b"}, []string{"email"})
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
}

func TestNewSenderRegistersConfiguredChannels(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	cfg.Email.ApiKey = "SG.test"
	cfg.Email.FromAddr = "alerts@example.com"
	cfg.Email.To = []string{"ops@example.com"}
	cfg.Webhook.Url = "https://hooks.example.com/notify"

	sender := NewSender(cfg, nil)
	names := map[string]bool{}
	for _, name := range sender.Channels() {
		names[name] = true
	}
	if !names[channel.NameEmail] || !names[channel.NameWebhook] {
		t.Fatalf("channels = %v", sender.Channels())
	}
}
