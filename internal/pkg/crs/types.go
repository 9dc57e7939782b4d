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

package crs

import "time"

// Key is an API key as reported by the relay service.
type Key struct {
	Id           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	ApiKey       string     `json:"apiKey,omitempty"`
	MonthlyLimit int64      `json:"monthlyLimit,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`
}

// CreateKeyRequest is the payload for creating a key on the relay service.
type CreateKeyRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	MonthlyLimit int64  `json:"monthlyLimit,omitempty"`
}

// UpdateKeyPatch is a partial update; nil fields are left untouched.
type UpdateKeyPatch struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	MonthlyLimit *int64  `json:"monthlyLimit,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// KeyStats is the per-key usage summary.
type KeyStats struct {
	KeyId         string  `json:"keyId"`
	TotalRequests int64   `json:"totalRequests"`
	TotalTokens   int64   `json:"totalTokens"`
	InputTokens   int64   `json:"inputTokens"`
	OutputTokens  int64   `json:"outputTokens"`
	Cost          float64 `json:"cost"`
}

// TrendPoint is one bucket of the usage trend series.
type TrendPoint struct {
	Date     string `json:"date"`
	Requests int64  `json:"requests"`
	Tokens   int64  `json:"tokens"`
}

// TrendParams filters the usage trend query.
type TrendParams struct {
	KeyId       string
	StartDate   string
	EndDate     string
	Granularity string
}

// Dashboard is the relay service's aggregate overview.
type Dashboard struct {
	TotalKeys      int64   `json:"totalKeys"`
	ActiveKeys     int64   `json:"activeKeys"`
	TotalRequests  int64   `json:"totalRequests"`
	TotalTokens    int64   `json:"totalTokens"`
	TotalCost      float64 `json:"totalCost"`
	RequestsToday  int64   `json:"requestsToday"`
	AvgResponseMs  float64 `json:"avgResponseMs"`
	SuccessRate    float64 `json:"successRate"`
	SystemStatus   string  `json:"systemStatus"`
	UptimeSeconds  int64   `json:"uptimeSeconds"`
}
