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

import "context"

// Channel names referenced by alert rule configurations.
const (
	NameEmail   = "email"
	NameWebhook = "webhook"
)

// Message is one outbound notification.
type Message struct {
	Title    string
	Body     string
	Severity string
}

// IChannel delivers messages over one transport.
type IChannel interface {
	Name() string
	Send(ctx context.Context, message Message) error
	Validate() error
}
