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

package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookChannel posts notifications as JSON to a configured endpoint.
type WebhookChannel struct {
	url    string
	client *resty.Client
}

func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookChannel{
		url:    url,
		client: resty.New().SetTimeout(timeout),
	}
}

func (c *WebhookChannel) Name() string {
	return NameWebhook
}

func (c *WebhookChannel) Send(ctx context.Context, message Message) error {
	if err := c.Validate(); err != nil {
		return err
	}

	payload := map[string]any{
		"title":     message.Title,
		"body":      message.Body,
		"severity":  message.Severity,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook post: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *WebhookChannel) Validate() error {
	if c.url == "" {
		return fmt.Errorf("webhook URL is required")
	}
	return nil
}
