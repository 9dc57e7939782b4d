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
	"time"

	"github.com/keyportal/keyportal/internal/pkg/notify/channel"
	"github.com/keyportal/keyportal/internal/portal/model"
	"github.com/keyportal/keyportal/pkg/log"
)

// Config wires the outbound notification channels. A channel with an empty
// primary field is left unregistered.
type Config struct {
	Email struct {
		ApiKey   string   `json:"apiKey" mapstructure:"apiKey"`
		FromName string   `json:"fromName" mapstructure:"fromName"`
		FromAddr string   `json:"fromAddr" mapstructure:"fromAddr"`
		To       []string `json:"to" mapstructure:"to"`
	} `json:"email" mapstructure:"email"`
	Webhook struct {
		Url     string        `json:"url" mapstructure:"url"`
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	} `json:"webhook" mapstructure:"webhook"`
}

func (c *Config) SetDefaults() {
	if c.Email.FromName == "" {
		c.Email.FromName = "Key Portal"
	}
	if c.Webhook.Timeout <= 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
}

// NotificationStore records delivery attempts.
type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
}

// Sender fans a message out to named channels and records every attempt.
// Delivery is best-effort: a channel failure is logged and recorded, never
// returned to the caller.
type Sender struct {
	channels map[string]channel.IChannel
	store    NotificationStore
}

func NewSender(cfg *Config, store NotificationStore) *Sender {
	s := &Sender{
		channels: map[string]channel.IChannel{},
		store:    store,
	}
	if cfg == nil {
		return s
	}
	if cfg.Email.ApiKey != "" {
		s.RegisterChannel(channel.NewEmailChannel(
			cfg.Email.ApiKey, cfg.Email.FromName, cfg.Email.FromAddr, cfg.Email.To))
	}
	if cfg.Webhook.Url != "" {
		s.RegisterChannel(channel.NewWebhookChannel(cfg.Webhook.Url, cfg.Webhook.Timeout))
	}
	return s
}

func (s *Sender) RegisterChannel(ch channel.IChannel) {
	s.channels[ch.Name()] = ch
}

// Channels returns the names of all registered channels.
func (s *Sender) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	return names
}

// Dispatch sends the message to each named channel and returns how many
// deliveries succeeded.
func (s *Sender) Dispatch(ctx context.Context, notificationType string, message channel.Message, channels []string) int {
	sent := 0
	for _, name := range channels {
		ch, ok := s.channels[name]
		if !ok {
			log.Warnw("notification channel not configured", "channel", name, "title", message.Title)
			s.record(ctx, notificationType, name, message, "channel not configured")
			continue
		}

		if err := ch.Send(ctx, message); err != nil {
			log.Errorw("notification delivery failed",
				"channel", name, "title", message.Title, "error", err)
			s.record(ctx, notificationType, name, message, err.Error())
			continue
		}

		sent++
		s.record(ctx, notificationType, name, message, "")
	}
	return sent
}

func (s *Sender) record(ctx context.Context, notificationType, channelName string, message channel.Message, sendErr string) {
	if s.store == nil {
		return
	}
	row := &model.Notification{
		Type:      notificationType,
		Title:     message.Title,
		Message:   message.Body,
		Channel:   channelName,
		Status:    model.NotificationStatusSent,
		CreatedAt: time.Now(),
	}
	if sendErr != "" {
		row.Status = model.NotificationStatusFailed
		row.Error = sendErr
	}
	if err := s.store.Create(ctx, row); err != nil {
		log.Errorw("failed to record notification", "channel", channelName, "error", err)
	}
}
