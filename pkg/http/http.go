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

package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	AccessLog       bool   `mapstructure:"accessLog"`
	ReadTimeout     int    `mapstructure:"readTimeout"`
	WriteTimeout    int    `mapstructure:"writeTimeout"`
	IdleTimeout     int    `mapstructure:"idleTimeout"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	BodyLimit       int    `mapstructure:"bodyLimit"`
	Auth            Auth   `mapstructure:"auth"`
}

type Auth struct {
	SecretKey     string        `mapstructure:"secretKey"`
	AccessExpire  time.Duration `mapstructure:"accessExpire"`
	RefreshExpire time.Duration `mapstructure:"refreshExpire"`
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "127.0.0.1"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 60
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 60
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 60
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = 4 * 1024 * 1024 // 4MB
	}
	if h.Auth.AccessExpire == 0 {
		h.Auth.AccessExpire = 24 * time.Hour
	}
	if h.Auth.RefreshExpire == 0 {
		h.Auth.RefreshExpire = 7 * 24 * time.Hour
	}

	// Config files document expiry values as "minutes" and often provide plain
	// numbers (e.g. accessExpire = 1440). When unmarshaled into time.Duration
	// via mapstructure, a plain number becomes nanoseconds and tokens would
	// expire almost immediately. Values below one minute are treated as
	// minutes; duration strings ("60m", "24h") pass through unchanged.
	if h.Auth.AccessExpire > 0 && h.Auth.AccessExpire < time.Minute {
		h.Auth.AccessExpire = h.Auth.AccessExpire * time.Minute
	}
	if h.Auth.RefreshExpire > 0 && h.Auth.RefreshExpire < time.Minute {
		h.Auth.RefreshExpire = h.Auth.RefreshExpire * time.Minute
	}
}

// QueryInt queries the int value from the query string
func (h *Http) QueryInt(c *fiber.Ctx, key string) int {
	value := c.Query(key)
	if value == "" {
		return 0
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return intValue
}
