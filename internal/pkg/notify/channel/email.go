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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailChannel delivers notifications through SendGrid.
type EmailChannel struct {
	apiKey   string
	fromName string
	fromAddr string
	to       []string
	client   *sendgrid.Client
}

func NewEmailChannel(apiKey, fromName, fromAddr string, to []string) *EmailChannel {
	return &EmailChannel{
		apiKey:   apiKey,
		fromName: fromName,
		fromAddr: fromAddr,
		to:       to,
		client:   sendgrid.NewSendClient(apiKey),
	}
}

func (c *EmailChannel) Name() string {
	return NameEmail
}

func (c *EmailChannel) Send(ctx context.Context, message Message) error {
	if err := c.Validate(); err != nil {
		return err
	}

	from := mail.NewEmail(c.fromName, c.fromAddr)
	for _, addr := range c.to {
		to := mail.NewEmail("", addr)
		email := mail.NewSingleEmail(from, message.Title, to, message.Body, message.Body)
		resp, err := c.client.SendWithContext(ctx, email)
		if err != nil {
			return fmt.Errorf("sendgrid send to %s: %w", addr, err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid send to %s: status %d: %s", addr, resp.StatusCode, resp.Body)
		}
	}
	return nil
}

func (c *EmailChannel) Validate() error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is required")
	}
	if c.fromAddr == "" {
		return fmt.Errorf("email from address is required")
	}
	if len(c.to) == 0 {
		return fmt.Errorf("email recipient list is empty")
	}
	return nil
}
