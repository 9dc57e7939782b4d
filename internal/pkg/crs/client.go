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

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/keyportal/keyportal/pkg/log"
)

// Config defines the relay service connection settings.
type Config struct {
	BaseUrl  string        `mapstructure:"baseUrl"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	c.BaseUrl = strings.TrimRight(c.BaseUrl, "/")
}

// Client is the single authenticated gateway to the relay service admin API.
// It owns the session token lifecycle and the retry-on-expired-token rule.
type Client struct {
	cfg     Config
	http    *resty.Client
	session *session
}

// envelope is the relay service's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type loginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // milliseconds
	Message   string `json:"message,omitempty"`
}

// NewClient creates a relay service client.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:     cfg,
		http:    resty.New().SetTimeout(cfg.Timeout),
		session: newSession(time.Now),
	}
}

// newClientWithClock is used by tests to control token expiry.
func newClientWithClock(cfg Config, now func() time.Time) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:     cfg,
		http:    resty.New().SetTimeout(cfg.Timeout),
		session: newSession(now),
	}
}

// login performs the credential exchange against the relay service.
func (c *Client) login(ctx context.Context) (string, time.Duration, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"username": c.cfg.Username,
			"password": c.cfg.Password,
		}).
		Post(c.cfg.BaseUrl + "/web/auth/login")
	if err != nil {
		return "", 0, &UnavailableError{Message: "login request failed", Err: err}
	}
	if resp.IsError() {
		return "", 0, &ApiError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
	}

	var lr loginResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return "", 0, &ApiError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("malformed login response: %v", err)}
	}
	if !lr.Success || lr.Token == "" {
		return "", 0, &ApiError{StatusCode: resp.StatusCode(), Message: lr.Message}
	}

	log.Debugw("crs login succeeded", "expiresInMs", lr.ExpiresIn)
	return lr.Token, time.Duration(lr.ExpiresIn) * time.Millisecond, nil
}

// ensureAuthenticated returns a valid bearer token, logging in when needed.
func (c *Client) ensureAuthenticated(ctx context.Context) (string, error) {
	return c.session.get(ctx, c.login)
}

// request issues an authenticated call and decodes the envelope data into out.
// A 401 clears the cached token and retries the call exactly once with a
// freshly obtained token; the bound is an explicit loop, never recursion.
func (c *Client) request(ctx context.Context, method, endpoint string, query map[string]string, body any, out any) error {
	const maxAttempts = 2

	var lastStatus int
	var lastBody string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, err := c.ensureAuthenticated(ctx)
		if err != nil {
			return err
		}

		req := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+token)
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, c.cfg.BaseUrl+endpoint)
		if err != nil {
			return &UnavailableError{Message: fmt.Sprintf("%s %s failed", method, endpoint), Err: err}
		}

		if resp.StatusCode() == 401 {
			c.session.invalidate()
			lastStatus = resp.StatusCode()
			lastBody = strings.TrimSpace(string(resp.Body()))
			continue
		}
		if resp.IsError() {
			return &ApiError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
		}

		return decodeEnvelope(resp.Body(), out)
	}

	// Both the original call and the refreshed retry came back 401.
	return &ApiError{StatusCode: lastStatus, Message: lastBody}
}

func decodeEnvelope(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed crs response: %w", err)
	}
	if !env.Success {
		return &ApiError{StatusCode: 200, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode crs response data: %w", err)
	}
	return nil
}

// ListKeys lists keys, optionally scoped to a relay-side user.
func (c *Client) ListKeys(ctx context.Context, userId string) ([]Key, error) {
	var query map[string]string
	if userId != "" {
		query = map[string]string{"userId": userId}
	}
	var keys []Key
	if err := c.request(ctx, resty.MethodGet, "/admin/api-keys", query, nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateKey creates a new key on the relay service.
func (c *Client) CreateKey(ctx context.Context, req CreateKeyRequest) (*Key, error) {
	var key Key
	if err := c.request(ctx, resty.MethodPost, "/admin/api-keys", nil, req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// UpdateKey applies a partial update to a key.
func (c *Client) UpdateKey(ctx context.Context, keyId string, patch UpdateKeyPatch) (*Key, error) {
	var key Key
	if err := c.request(ctx, resty.MethodPut, "/admin/api-keys/"+keyId, nil, patch, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey deletes a key on the relay service.
func (c *Client) DeleteKey(ctx context.Context, keyId string) error {
	return c.request(ctx, resty.MethodDelete, "/admin/api-keys/"+keyId, nil, nil, nil)
}

// GetKeyStats returns the usage summary for one key.
func (c *Client) GetKeyStats(ctx context.Context, keyId string) (*KeyStats, error) {
	var stats KeyStats
	if err := c.request(ctx, resty.MethodGet, "/admin/api-keys/"+keyId+"/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetUsageTrend returns the usage trend series.
func (c *Client) GetUsageTrend(ctx context.Context, params TrendParams) ([]TrendPoint, error) {
	query := map[string]string{}
	if params.KeyId != "" {
		query["keyId"] = params.KeyId
	}
	if params.StartDate != "" {
		query["startDate"] = params.StartDate
	}
	if params.EndDate != "" {
		query["endDate"] = params.EndDate
	}
	if params.Granularity != "" {
		query["granularity"] = params.Granularity
	}
	var points []TrendPoint
	if err := c.request(ctx, resty.MethodGet, "/admin/usage-trend", query, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// GetDashboard returns the relay service's aggregate overview.
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	if err := c.request(ctx, resty.MethodGet, "/admin/dashboard", nil, nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// Ping probes relay service reachability without authentication.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.cfg.BaseUrl + "/health")
	if err != nil {
		return &UnavailableError{Message: "health probe failed", Err: err}
	}
	if resp.IsError() {
		return &ApiError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
	}
	return nil
}
