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

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/keyportal/keyportal/pkg/log"
	"github.com/redis/go-redis/v9"
)

// Redis defines redis connection configuration.
type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"poolSize"`
}

// SetDefaults fills zero-valued fields.
func (r *Redis) SetDefaults() {
	if r.Host == "" {
		r.Host = "127.0.0.1"
	}
	if r.Port == 0 {
		r.Port = 6379
	}
	if r.PoolSize <= 0 {
		r.PoolSize = 10
	}
}

// Client wraps the redis client for dependency injection.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a redis client and verifies connectivity.
func NewClient(cfg Redis) (*Client, error) {
	cfg.SetDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Info("Redis connected successfully")

	return &Client{rdb: rdb}, nil
}

// Redis returns the underlying client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Ping probes redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
